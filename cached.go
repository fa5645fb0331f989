package stardict

import (
	"path/filepath"
	"strings"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/cache"
	"github.com/go-stardict/stardict/internal/dictfile"
	"github.com/go-stardict/stardict/internal/idxfile"
)

// idxCacheSuffix names the cache file extension, matching
// stardict_sqlite.rs's ".sqlite" convention.
const idxCacheSuffix = "sqlite"

// CachedDictionary is a StarDict dictionary backed by the persistent,
// multi-process-coordinated lookup cache (spec.md §4.6-4.7). The first
// process to open a given dictionary directory parses the original
// files and populates the cache in the background; every subsequent
// open of the same directory, from this or any other process, reuses
// the populated cache instead of reparsing.
type CachedDictionary struct {
	dir   string
	Ifo   *ifo.Ifo
	cache *cache.Cache
}

// OpenCached opens dir's dictionary through a persistent cache stored
// under the platform user cache directory, in a subdirectory named
// appName (see [cache.Dir]). The original .idx/.dict files are only
// parsed if no usable cache file already exists for this dictionary
// directory.
//
// OpenCached returns promptly even when population has just started:
// early [CachedDictionary.Lookup] calls report [ErrCacheInitiating]
// until the background pass commits.
func OpenCached(dir, appName string) (*CachedDictionary, error) {
	files, err := discover(dir)
	if err != nil {
		return nil, err
	}

	inf, err := parseIfo(files.ifoPath)
	if err != nil {
		return nil, err
	}

	cacheDir, err := cache.Dir(appName)
	if err != nil {
		return nil, err
	}
	idxCachePath := filepath.Join(cacheDir, filepath.Base(dir)+"."+idxCacheSuffix)

	source := func() (*idxfile.Index, *dictfile.Dict, error) {
		idx, err := parseIdx(files, inf)
		if err != nil {
			return nil, nil, err
		}
		dict, err := dictfile.Open(files.dictPath, files.dictDz)
		if err != nil {
			return nil, nil, err
		}
		return idx, dict, nil
	}

	c, err := cache.Open(idxCachePath, inf, files.synPath != "", source)
	if err != nil {
		return nil, err
	}

	return &CachedDictionary{dir: dir, Ifo: inf, cache: c}, nil
}

// BookName returns the dictionary's .ifo "bookname" field.
func (d *CachedDictionary) BookName() string {
	return d.Ifo.BookName
}

// Lookup resolves word through the cache: a direct hit plus every
// synonym alias, deduplicated by canonical headword. It reports false
// if the dictionary has no matching entry. If the cache's first
// population pass has not finished yet, it returns a *[StardictError]
// with [KindCacheInitiating]; callers may retry.
func (d *CachedDictionary) Lookup(word string) ([]WordDefinition, bool, error) {
	defs, err := d.cache.Lookup(strings.ToLower(word))
	if err != nil {
		return nil, false, err
	}
	if len(defs) == 0 {
		return nil, false, nil
	}

	results := make([]WordDefinition, len(defs))
	for i, def := range defs {
		segs := make([]WordDefinitionSegment, len(def.Segments))
		for j, s := range def.Segments {
			segs[j] = WordDefinitionSegment{Types: s.Types, Text: s.Text}
		}
		results[i] = WordDefinition{Headword: def.Headword, Segments: segs}
	}
	return results, true, nil
}

// Close releases the cache's current database handle. It does not wait
// for a background population run to finish.
func (d *CachedDictionary) Close() error {
	return d.cache.Close()
}
