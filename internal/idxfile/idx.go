// Package idxfile parses a StarDict ".idx" index (word/offset/size
// triples, optionally gzip-compressed) together with its optional
// ".syn" synonym index, and exposes the merged, case-insensitive
// lookup described in spec.md §4.4.
package idxfile

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"strings"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/staterr"
	"github.com/go-stardict/stardict/internal/textutil"
)

// Block is a byte range inside the uncompressed .dict stream.
type Block struct {
	Offset uint64
	Size   uint32
}

// Entry is one coalesced index entry: a canonical-case headword plus
// every block recorded for it, in on-disk order.
type Entry struct {
	Headword string
	Blocks   []Block
}

// rawEntry is one line of the raw, uncoalesced .idx stream. Synonym
// records reference raw entries by their 0-based position, including
// entries with an empty headword.
type rawEntry struct {
	headword string
	offset   uint64
	size     uint32
}

// Index is the parsed, queryable .idx (+ .syn) pair.
type Index struct {
	items map[string]*Entry            // lowercase(headword) -> Entry
	syn   map[string]map[string]struct{} // lowercase(alias) -> set of lowercase(headword)
}

// HasSyn reports whether a .syn file was supplied to Parse.
func (idx *Index) HasSyn() bool {
	return idx.syn != nil
}

// Len returns the number of distinct headwords in the index.
func (idx *Index) Len() int {
	return len(idx.items)
}

// offsetWidth returns the byte width of the offset/size fields: 4 for
// V242, and for V300, 8 only when idxoffsetbits is 64.
func offsetWidth(version ifo.Version, idxOffsetBits int) int {
	if version == ifo.V300 && idxOffsetBits == 64 {
		return 8
	}
	return 4
}

// Parse reads the .idx stream from r (already gunzipped by the caller
// if the on-disk file was .idx.gz) and, if syn is non-nil, the .syn
// stream, returning the merged Index.
func Parse(r io.Reader, inf *ifo.Ifo, syn io.Reader) (*Index, error) {
	width := offsetWidth(inf.Version, inf.IdxOffsetBits)

	raw, items, err := readItems(r, width)
	if err != nil {
		return nil, err
	}

	idx := &Index{items: items}
	if syn != nil {
		synMap, err := readSyn(syn, raw, items)
		if err != nil {
			return nil, err
		}
		idx.syn = synMap
	}
	return idx, nil
}

// GunzipIfNeeded wraps r in a gzip reader when gz is true, matching the
// ".idx.gz" on-disk variant described in spec.md §6.
func GunzipIfNeeded(r io.Reader, gz bool) (io.Reader, error) {
	if !gz {
		return r, nil
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "idx", err)
	}
	return zr, nil
}

func readItems(r io.Reader, width int) ([]rawEntry, map[string]*Entry, error) {
	br := bufio.NewReader(r)
	items := map[string]*Entry{}
	var raw []rawEntry

	for {
		headwordBytes, err := br.ReadBytes(0)
		if err == io.EOF {
			if len(headwordBytes) == 0 {
				break
			}
			return nil, nil, staterr.New(staterr.KindInvalidIdxElement, "headword", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, nil, staterr.New(staterr.KindInvalidIdxElement, "headword", err)
		}
		headword := textutil.DecodeLossy(headwordBytes[:len(headwordBytes)-1])

		offset, err := readUint(br, width)
		if err != nil {
			return nil, nil, staterr.New(staterr.KindInvalidIdxElement, "offset", err)
		}
		size, err := readUint(br, width)
		if err != nil {
			return nil, nil, staterr.New(staterr.KindInvalidIdxElement, "size", err)
		}

		raw = append(raw, rawEntry{headword: headword, offset: offset, size: uint32(size)})

		if headword == "" {
			continue
		}
		key := strings.ToLower(headword)
		entry, ok := items[key]
		if !ok {
			entry = &Entry{Headword: headword}
			items[key] = entry
		}
		entry.Blocks = append(entry.Blocks, Block{Offset: offset, Size: uint32(size)})
	}

	return raw, items, nil
}

func readUint(r io.Reader, width int) (uint64, error) {
	buf := make([]byte, width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	if width == 8 {
		return binary.BigEndian.Uint64(buf), nil
	}
	return uint64(binary.BigEndian.Uint32(buf)), nil
}

// readSyn parses the .syn stream: NUL-terminated alias, u32 BE index
// into raw. It builds the alias -> {headword} map and, per spec.md
// §4.4, a symmetric back-edge headword -> {alias} whenever the alias
// itself is a key of items.
func readSyn(r io.Reader, raw []rawEntry, items map[string]*Entry) (map[string]map[string]struct{}, error) {
	br := bufio.NewReader(r)
	syn := map[string]map[string]struct{}{}

	add := func(key, value string) {
		set, ok := syn[key]
		if !ok {
			set = map[string]struct{}{}
			syn[key] = set
		}
		set[value] = struct{}{}
	}

	for {
		aliasBytes, err := br.ReadBytes(0)
		if err == io.EOF {
			if len(aliasBytes) == 0 {
				break
			}
			return nil, staterr.New(staterr.KindInvalidSynIndex, "", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, staterr.New(staterr.KindInvalidSynIndex, "", err)
		}
		alias := textutil.DecodeLossy(aliasBytes[:len(aliasBytes)-1])

		indexBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, indexBuf); err != nil {
			return nil, staterr.New(staterr.KindInvalidSynIndex, alias, err)
		}
		index := binary.BigEndian.Uint32(indexBuf)

		if alias == "" {
			continue
		}
		if int(index) >= len(raw) {
			continue
		}
		referenced := raw[index]
		lowerAlias := strings.ToLower(alias)
		lowerHeadword := strings.ToLower(referenced.headword)

		add(lowerAlias, lowerHeadword)

		if _, ok := items[lowerAlias]; ok {
			add(lowerHeadword, lowerAlias)
		}
	}

	return syn, nil
}

// Entries returns every coalesced Entry in the index, in no particular
// order. Intended for bulk cache population, not interactive lookup.
func (idx *Index) Entries() []*Entry {
	entries := make([]*Entry, 0, len(idx.items))
	for _, entry := range idx.items {
		entries = append(entries, entry)
	}
	return entries
}

// SynMap returns the parsed .syn alias table as a plain
// lowercase(alias-or-headword) -> []lowercase(headword) map, suitable
// for serializing into a cache backend. It returns nil if no .syn file
// was supplied to Parse.
func (idx *Index) SynMap() map[string][]string {
	if idx.syn == nil {
		return nil
	}
	out := make(map[string][]string, len(idx.syn))
	for key, targets := range idx.syn {
		list := make([]string, 0, len(targets))
		for target := range targets {
			list = append(list, target)
		}
		out[key] = list
	}
	return out
}

// Lookup returns every Entry reachable from word: a direct hit (if
// any) followed by every synonym alias's entry, in the synonym table's
// (unordered) iteration order, deduplicated by canonical headword. It
// reports false if nothing was found.
func (idx *Index) Lookup(word string) ([]*Entry, bool) {
	key := strings.ToLower(word)

	var result []*Entry
	seen := map[string]struct{}{}

	if entry, ok := idx.items[key]; ok {
		result = append(result, entry)
		seen[entry.Headword] = struct{}{}
	}

	if idx.syn != nil {
		for alias := range idx.syn[key] {
			entry, ok := idx.items[alias]
			if !ok {
				continue
			}
			if _, dup := seen[entry.Headword]; dup {
				continue
			}
			result = append(result, entry)
			seen[entry.Headword] = struct{}{}
		}
	}

	if len(result) == 0 {
		return nil, false
	}
	return result, true
}
