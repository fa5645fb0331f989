// Package dictfile provides byte-range access to a StarDict ".dict" or
// ".dict.dz" definition store, and decodes a range into typed
// word-definition segments according to the dictionary's
// sametypesequence convention.
package dictfile

import (
	"io"
	"os"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/dictzip"
	"github.com/go-stardict/stardict/internal/idxfile"
	"github.com/go-stardict/stardict/internal/staterr"
	"github.com/go-stardict/stardict/internal/textutil"
)

// Segment is one decoded (types, text) pair. Types is a 1+-character
// string of StarDict type codes; Text is the lossily-decoded UTF-8
// definition text.
type Segment struct {
	Types string
	Text  string
}

// rangeReader provides byte ranges from a definition store. It is
// implemented by plainReader (uncompressed .dict) and by
// [dictzip.Reader] (.dict.dz).
type rangeReader interface {
	GetRange(offset, size int64) ([]byte, error)
}

// Dict is an open definition store, ready to decode blocks named by an
// [idxfile.Entry].
type Dict struct {
	r      rangeReader
	closer io.Closer
}

// plainReader implements rangeReader over an uncompressed .dict file,
// caching the file size so out-of-range reads return io.EOF and no
// data without touching the file.
type plainReader struct {
	f    *os.File
	size int64
}

func (p *plainReader) GetRange(offset, size int64) ([]byte, error) {
	if offset+size > p.size {
		return nil, io.EOF
	}
	buf := make([]byte, size)
	if _, err := p.f.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Open opens the definition store at path. When dz is true, path is
// treated as a dictzip (.dict.dz) file and random access goes through
// [dictzip.Reader]; otherwise it is a plain .dict file read with
// bounds-checked ReadAt calls.
func Open(path string, dz bool) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "dict", err)
	}

	if dz {
		zr, err := dictzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &Dict{r: zr, closer: f}, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, staterr.New(staterr.KindFailedOpenFile, "dict", err)
	}
	return &Dict{r: &plainReader{f: f, size: info.Size()}, closer: f}, nil
}

// NewFromReader builds a Dict directly from an already-open range
// reader, letting callers (and tests) supply a bufio-wrapped file or an
// in-memory dictzip fixture without going through Open.
func NewFromReader(r rangeReader) *Dict {
	return &Dict{r: r}
}

// Close releases the underlying file opened by [Open]. It is a no-op
// for a Dict built with [NewFromReader].
func (d *Dict) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Lookup decodes every block of entry into a [Segment], per inf's
// sametypesequence. Blocks that fail to read are silently skipped; if
// every block fails, Lookup reports false.
func (d *Dict) Lookup(inf *ifo.Ifo, entry *idxfile.Entry) ([]Segment, bool) {
	segments := make([]Segment, 0, len(entry.Blocks))

	for _, block := range entry.Blocks {
		raw, err := d.r.GetRange(int64(block.Offset), int64(block.Size))
		if err != nil {
			continue
		}

		seg, ok := decodeBlock(inf.SameTypeSequence, raw)
		if !ok {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return nil, false
	}
	return segments, true
}

// decodeBlock splits one raw block into a (types, text) Segment, per
// spec.md §4.3: a non-empty sametypesequence supplies the types string
// directly and the whole block is text; otherwise the first byte is
// the type character and at least one more byte of text must follow.
func decodeBlock(sameTypeSequence string, raw []byte) (Segment, bool) {
	if sameTypeSequence != "" {
		return Segment{
			Types: sameTypeSequence,
			Text:  textutil.DecodeLossy(raw),
		}, true
	}

	if len(raw) < 2 {
		return Segment{}, false
	}
	return Segment{
		Types: string(raw[0]),
		Text:  textutil.DecodeLossy(raw[1:]),
	}, true
}
