// Copyright 2026 The go-stardict Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dictzip

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-stardict/stardict/internal/staterr"
)

// gzip header values.
//
//	+---+---+---+---+---+---+---+---+---+---+
//	|ID1|ID2|CM |FLG|     MTIME     |XFL|OS |
//	+---+---+---+---+---+---+---+---+---+---+
const (
	hdrGzipID1   byte = 0x1f
	hdrGzipID2   byte = 0x8b
	hdrDeflateCM byte = 0x08
)

// hdrDictzipSI1, hdrDictzipSI2 are the EXTRA sub-field ID bytes ('R','A')
// for the dictzip random-access sub-field.
const (
	hdrDictzipSI1 = byte('R')
	hdrDictzipSI2 = byte('A')
)

// FLG (Flags).
// bit 0 : FTEXT (ignored).
// bit 1 : FHCRC.
// bit 2 : FEXTRA (required for dictzip).
// bit 3 : FNAME.
// bit 4 : FCOMMENT.
const (
	flgCRC     = byte(1 << 1)
	flgEXTRA   = byte(1 << 2)
	flgNAME    = byte(1 << 3)
	flgCOMMENT = byte(1 << 4)
)

func headerErr(reason string) error {
	return staterr.New(staterr.KindFailedParseDictHeader, reason, nil)
}

// Header is the gzip file header.
//
// Strings must be UTF-8 encoded and may only contain Unicode code
// points U+0001 through U+00FF, due to limitations of the gzip file
// format.
type Header struct {
	// Comment is the COMMENT header field.
	Comment string

	// Extra includes all EXTRA sub-fields except the dictzip RA
	// sub-field.
	Extra []byte

	// ModTime is the MTIME modification time field.
	ModTime time.Time

	// Name is the NAME header field.
	Name string

	// OS is the OS header field.
	OS byte

	// chunkLength is the size of uncompressed dictzip chunks.
	chunkLength int

	// sizes is the list of compressed sizes of each chunk in the file.
	sizes []int
}

// ChunkLength returns the dictzip uncompressed chunk size.
func (h *Header) ChunkLength() int {
	return h.chunkLength
}

// Sizes returns the compressed size of each dictzip chunk.
func (h *Header) Sizes() []int {
	return h.sizes
}

// Reader provides random access to the uncompressed data of a dictzip
// file. It implements [io.Reader], [io.Seeker], and [io.ReaderAt] for
// whole-stream consumption, and [Reader.GetRange] for chunk-granular
// random access.
type Reader struct {
	Header

	r io.ReadSeeker

	// dataOffset is the file offset of the first deflate chunk.
	dataOffset int64

	// offsets[i] is the compressed file offset of chunk i.
	offsets []int64

	// cache holds inflated chunks, keyed by chunk index. It is never
	// evicted: chunks are small (typically <= 64 KiB) and StarDict
	// corpora reuse popular chunks heavily across a reader's lifetime.
	cache map[int][]byte

	// offset is the current position in the uncompressed stream, used
	// by Read/Seek.
	offset int64
}

// NewReader returns a new dictzip [Reader] reading the compressed data
// in r. It does not take ownership of r; the caller is responsible for
// closing the underlying file when done with the Reader.
//
// NewReader seeks r to the beginning before reading the header.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	z := &Reader{
		r:     r,
		cache: map[int][]byte{},
	}
	if err := z.reset(r); err != nil {
		return nil, err
	}
	return z, nil
}

func (z *Reader) reset(r io.ReadSeeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("dictzip: seek: %w", err)
	}

	flg, err := z.readFlg()
	if err != nil {
		return err
	}
	if flg&flgEXTRA == 0 {
		return headerErr("header flag extra not set")
	}

	if err := z.readExtra(); err != nil {
		return err
	}

	if flg&flgNAME != 0 {
		name, err := z.readString()
		if err != nil {
			return err
		}
		z.Name = name
	}

	if flg&flgCOMMENT != 0 {
		comment, err := z.readString()
		if err != nil {
			return err
		}
		z.Comment = comment
	}

	if flg&flgCRC != 0 {
		buf := make([]byte, 2)
		if _, err := io.ReadFull(z.r, buf); err != nil {
			return headerErr("truncated CRC-16")
		}
		// The CRC-16 is not verified: the RA sub-field, not the header
		// CRC, is what random access depends on.
	}

	pos, err := z.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("dictzip: tell: %w", err)
	}
	z.dataOffset = pos

	offsets := make([]int64, len(z.sizes)+1)
	offsets[0] = z.dataOffset
	for i, size := range z.sizes {
		offsets[i+1] = offsets[i] + int64(size)
	}
	z.offsets = offsets

	return nil
}

// readFlg reads the fixed 10-byte gzip header and returns the FLG byte.
func (z *Reader) readFlg() (byte, error) {
	head := make([]byte, 10)
	if _, err := io.ReadFull(z.r, head); err != nil {
		return 0, headerErr("truncated header")
	}

	if head[0] != hdrGzipID1 || head[1] != hdrGzipID2 {
		return 0, headerErr("bad magic")
	}
	if head[2] != hdrDeflateCM {
		return 0, headerErr("unsupported compression method")
	}

	if mtime := binary.LittleEndian.Uint32(head[4:8]); mtime > 0 {
		z.ModTime = time.Unix(int64(mtime), 0)
	}
	z.OS = head[9]

	return head[3], nil
}

// readExtra parses the EXTRA header, locating the dictzip "RA"
// sub-field among any number of sub-fields and recording every other
// sub-field's raw bytes in Header.Extra.
func (z *Reader) readExtra() error {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(z.r, buf); err != nil {
		return headerErr("truncated EXTRA length")
	}
	xlen := binary.LittleEndian.Uint16(buf)

	extra := make([]byte, xlen)
	if _, err := io.ReadFull(z.r, extra); err != nil {
		return headerErr("truncated EXTRA")
	}

	er := bytes.NewReader(extra)
	found := false
	for er.Len() > 0 {
		sub := make([]byte, 4)
		if _, err := io.ReadFull(er, sub); err != nil {
			return headerErr("truncated EXTRA sub-field")
		}
		si1, si2 := sub[0], sub[1]
		subLen := binary.LittleEndian.Uint16(sub[2:])

		subBuf := make([]byte, subLen)
		if _, err := io.ReadFull(er, subBuf); err != nil {
			return headerErr("truncated EXTRA sub-field data")
		}

		if si1 == hdrDictzipSI1 && si2 == hdrDictzipSI2 {
			if err := z.parseRA(subBuf); err != nil {
				return err
			}
			found = true
		} else {
			z.Extra = append(z.Extra, sub...)
			z.Extra = append(z.Extra, subBuf...)
		}
	}

	if !found {
		return headerErr("no RA sub-field")
	}
	return nil
}

// parseRA parses the dictzip RA sub-field's payload: VER, CHLEN, CHCNT,
// then CHCNT compressed chunk sizes.
func (z *Reader) parseRA(buf []byte) error {
	r := bytes.NewReader(buf)

	u16 := func() (uint16, error) {
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint16(b[:]), nil
	}

	ver, err := u16()
	if err != nil {
		return headerErr("truncated RA version")
	}
	if ver != 1 {
		return headerErr(fmt.Sprintf("unsupported RA version %d", ver))
	}

	chlen, err := u16()
	if err != nil {
		return headerErr("truncated RA chunk length")
	}
	chcnt, err := u16()
	if err != nil {
		return headerErr("truncated RA chunk count")
	}

	if len(buf)-6 != 2*int(chcnt) {
		return headerErr("RA sub-field length does not match chunk count")
	}

	sizes := make([]int, chcnt)
	for i := range sizes {
		size, err := u16()
		if err != nil {
			return headerErr("truncated RA chunk sizes")
		}
		sizes[i] = int(size)
	}

	z.chunkLength = int(chlen)
	z.sizes = sizes
	return nil
}

// readString reads a NUL-terminated Latin-1 string.
func (z *Reader) readString() (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(z.r, buf); err != nil {
			return "", headerErr("truncated string header")
		}
		if buf[0] == 0 {
			return b.String(), nil
		}
		b.WriteRune(rune(buf[0]))
	}
}

// GetRange returns the uncompressed bytes in [offset, offset+size),
// inflating and caching only the chunks that range spans. It returns
// an error if the range extends past the last chunk.
func (z *Reader) GetRange(offset, size int64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	chunkCount := int64(len(z.sizes))
	first := offset / int64(z.chunkLength)
	last := (offset + size - 1) / int64(z.chunkLength)
	if last >= chunkCount {
		return nil, io.EOF
	}

	var buf []byte
	for i := first; i <= last; i++ {
		chunk, err := z.readChunk(int(i))
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}

	start := offset - first*int64(z.chunkLength)
	end := start + size
	if end > int64(len(buf)) {
		return nil, io.EOF
	}
	return buf[start:end], nil
}

// readChunk returns the inflated bytes of chunk i, populating the
// cache on a miss.
func (z *Reader) readChunk(i int) ([]byte, error) {
	if cached, ok := z.cache[i]; ok {
		return cached, nil
	}

	if _, err := z.r.Seek(z.offsets[i], io.SeekStart); err != nil {
		return nil, fmt.Errorf("dictzip: seek chunk %d: %w", i, err)
	}

	compressed := make([]byte, z.sizes[i])
	if _, err := io.ReadFull(z.r, compressed); err != nil {
		return nil, fmt.Errorf("dictzip: read chunk %d: %w", i, err)
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	inflated, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("dictzip: inflate chunk %d: %w", i, err)
	}

	z.cache[i] = inflated
	return inflated, nil
}

// Close releases the Reader's chunk cache. It does not close the
// underlying [io.ReadSeeker]; that remains the caller's responsibility.
func (z *Reader) Close() error {
	z.cache = nil
	return nil
}

// Read implements [io.Reader] over the full uncompressed stream.
func (z *Reader) Read(p []byte) (int, error) {
	n, err := z.ReadAt(p, z.offset)
	z.offset += int64(n)
	return n, err
}

// ReadAt implements [io.ReaderAt] over the full uncompressed stream.
func (z *Reader) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		i := int(pos / int64(z.chunkLength))
		if i >= len(z.sizes) {
			return n, io.EOF
		}
		chunk, err := z.readChunk(i)
		if err != nil {
			return n, err
		}
		start := pos - int64(i)*int64(z.chunkLength)
		if start >= int64(len(chunk)) {
			return n, io.EOF
		}
		n += copy(p[n:], chunk[start:])
	}
	return n, nil
}

// Seek implements [io.Seeker].
func (z *Reader) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = z.offset + offset
	case io.SeekEnd:
		return 0, fmt.Errorf("dictzip: %w", staterr.New(staterr.KindFailedParseDictHeader, "SeekEnd unsupported", nil))
	default:
		return 0, fmt.Errorf("dictzip: unsupported seek mode %d", whence)
	}
	if newOffset < 0 {
		return 0, fmt.Errorf("dictzip: negative offset")
	}
	z.offset = newOffset
	return z.offset, nil
}
