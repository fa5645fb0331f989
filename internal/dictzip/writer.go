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
	"hash/crc32"
	"io"
	"math"
)

// BestSpeed aliases [flate.BestSpeed], the only level the fixture
// builder below is exercised with.
const BestSpeed = flate.BestSpeed

// Writer builds a dictzip stream for use as a test fixture. Nothing on
// the read path writes dictzip files; this exists solely so
// reader_test.go and writer_test.go can construct a .dict.dz byte
// stream in memory instead of checking in a binary file.
type Writer struct {
	dst         io.Writer
	chunkLength int
	level       int
	closed      bool

	chunk   bytes.Buffer
	fw      *flate.Writer
	written int // uncompressed bytes buffered into the current chunk

	body  bytes.Buffer // concatenated compressed chunks, in order
	sizes []int        // compressed size of each finished chunk
	crc   uint32
	isize int64
}

// NewWriterLevel returns a Writer that deflates at level, splitting
// the uncompressed stream into chunkLength-byte chunks. Each chunk is
// compressed as its own independent deflate stream, so that
// [Reader.GetRange] can inflate any single chunk without the others.
func NewWriterLevel(dst io.Writer, level, chunkLength int) (*Writer, error) {
	if chunkLength <= 0 || chunkLength > math.MaxUint16 {
		return nil, headerErr(fmt.Sprintf("invalid chunk length %d", chunkLength))
	}

	w := &Writer{dst: dst, chunkLength: chunkLength, level: level}
	if err := w.startChunk(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) startChunk() error {
	w.chunk.Reset()
	fw, err := flate.NewWriter(&w.chunk, w.level)
	if err != nil {
		return fmt.Errorf("dictzip: new deflate writer: %w", err)
	}
	w.fw = fw
	w.written = 0
	return nil
}

// Write compresses p, closing off and starting a fresh chunk every
// chunkLength uncompressed bytes.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("dictzip: write on closed writer")
	}

	var n int
	for n < len(p) {
		end := n + (w.chunkLength - w.written)
		if end > len(p) {
			end = len(p)
		}
		part := p[n:end]

		if _, err := w.fw.Write(part); err != nil {
			return n, fmt.Errorf("dictzip: compress: %w", err)
		}
		w.crc = crc32.Update(w.crc, crc32.IEEETable, part)
		w.isize += int64(len(part))
		w.written += len(part)
		n = end

		if w.written == w.chunkLength {
			if err := w.finishChunk(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// finishChunk closes the current chunk's deflate stream, records its
// compressed size, and starts the next one. It is a no-op if nothing
// has been written to the current chunk.
func (w *Writer) finishChunk() error {
	if w.written == 0 {
		return nil
	}
	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("dictzip: close chunk: %w", err)
	}
	w.sizes = append(w.sizes, w.chunk.Len())
	w.body.Write(w.chunk.Bytes())
	return w.startChunk()
}

// Close finalizes any partial trailing chunk, writes the gzip header
// and RA extra field, then the compressed chunk data and the
// CRC-32/ISIZE trailer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.finishChunk(); err != nil {
		return err
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	if _, err := w.dst.Write(w.body.Bytes()); err != nil {
		return fmt.Errorf("dictzip: write chunk data: %w", err)
	}

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], w.crc)
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(w.isize))
	if _, err := w.dst.Write(trailer[:]); err != nil {
		return fmt.Errorf("dictzip: write trailer: %w", err)
	}
	return nil
}

// writeHeader writes the fixed 10-byte gzip header (OS left
// "unknown", no NAME/COMMENT/FHCRC — this fixture builder has no need
// for them) followed by the EXTRA field carrying the RA sub-field.
func (w *Writer) writeHeader() error {
	header := [10]byte{0: hdrGzipID1, 1: hdrGzipID2, 2: hdrDeflateCM, 3: flgEXTRA, 9: 0xff}
	if _, err := w.dst.Write(header[:]); err != nil {
		return fmt.Errorf("dictzip: write header: %w", err)
	}
	return w.writeExtra()
}

// writeExtra writes XLEN followed by the RA sub-field: SI1, SI2, LEN,
// VER, CHLEN, CHCNT, then one little-endian uint16 per chunk size.
func (w *Writer) writeExtra() error {
	if len(w.sizes) > math.MaxUint16 {
		return headerErr(fmt.Sprintf("chunk count %d exceeds uint16", len(w.sizes)))
	}

	raLen := 6 + 2*len(w.sizes)
	extra := make([]byte, 2+4+raLen)
	binary.LittleEndian.PutUint16(extra[0:2], uint16(4+raLen))
	extra[2], extra[3] = hdrDictzipSI1, hdrDictzipSI2
	binary.LittleEndian.PutUint16(extra[4:6], uint16(raLen))
	binary.LittleEndian.PutUint16(extra[6:8], 1) // RA sub-field version
	binary.LittleEndian.PutUint16(extra[8:10], uint16(w.chunkLength))
	binary.LittleEndian.PutUint16(extra[10:12], uint16(len(w.sizes)))

	pos := 12
	for _, size := range w.sizes {
		if size > math.MaxUint16 {
			return headerErr(fmt.Sprintf("chunk size %d exceeds uint16", size))
		}
		binary.LittleEndian.PutUint16(extra[pos:pos+2], uint16(size))
		pos += 2
	}

	if _, err := w.dst.Write(extra); err != nil {
		return fmt.Errorf("dictzip: write extra field: %w", err)
	}
	return nil
}
