// Package stardict is a read-only library for looking up word
// definitions in StarDict-format dictionaries: a legacy on-disk format
// consisting of a metadata file (.ifo), a sorted index (.idx, optionally
// gzip-compressed), an optional synonym index (.syn), and a definition
// store (.dict, optionally stored as a randomly-accessible dictzip
// file).
//
// [Open] parses a dictionary directory directly; [OpenCached] parses it
// once and persists the result into a multi-process-shared lookup
// cache, so subsequent opens of the same directory (from this or any
// other process) skip reparsing.
package stardict

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/dictfile"
	"github.com/go-stardict/stardict/internal/idxfile"
	"github.com/go-stardict/stardict/internal/staterr"
)

// Dictionary is a StarDict dictionary opened directly from its on-disk
// files: every [Dictionary.Lookup] call re-reads the .idx-derived index
// held in memory and decodes blocks straight out of the .dict/.dict.dz
// store. See [CachedDictionary] for the persistent-cache variant.
type Dictionary struct {
	dir  string
	Ifo  *ifo.Ifo
	idx  *idxfile.Index
	dict *dictfile.Dict
}

// dictFiles is the resolved set of on-disk paths for one dictionary
// directory, as discovered by [discover].
type dictFiles struct {
	ifoPath string

	idxPath string
	idxGz   bool

	dictPath string
	dictDz   bool

	// synPath is "" when the dictionary carries no .syn file.
	synPath string
}

// Open opens the StarDict dictionary in dir: exactly one *.ifo file,
// its matching <prefix>.idx or <prefix>.idx.gz, its matching
// <prefix>.dict or <prefix>.dict.dz, and an optional <prefix>.syn.
// <prefix> is the .ifo filename minus its extension. The returned
// Dictionary owns open file handles until [Dictionary.Close] is called.
func Open(dir string) (*Dictionary, error) {
	files, err := discover(dir)
	if err != nil {
		return nil, err
	}

	inf, err := parseIfo(files.ifoPath)
	if err != nil {
		return nil, err
	}

	idx, err := parseIdx(files, inf)
	if err != nil {
		return nil, err
	}

	dict, err := dictfile.Open(files.dictPath, files.dictDz)
	if err != nil {
		return nil, err
	}

	return &Dictionary{dir: dir, Ifo: inf, idx: idx, dict: dict}, nil
}

// BookName returns the dictionary's .ifo "bookname" field.
func (d *Dictionary) BookName() string {
	return d.Ifo.BookName
}

// Close releases the open .dict/.dict.dz file handle. The .idx and
// .syn files are fully parsed into memory at Open time and are not
// held open.
func (d *Dictionary) Close() error {
	return d.dict.Close()
}

// discover locates the four StarDict files making up the dictionary in
// dir, per spec.md §6's directory layout rule.
func discover(dir string) (*dictFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "ifo", err)
	}

	var ifoName string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".ifo") {
			ifoName = entry.Name()
			break
		}
	}
	if ifoName == "" {
		return nil, staterr.New(staterr.KindNoFileFound, "ifo", nil)
	}

	prefix := filepath.Join(dir, strings.TrimSuffix(ifoName, filepath.Ext(ifoName)))

	idxPath, idxGz, err := findSubFile(prefix, "idx", "gz")
	if err != nil {
		return nil, err
	}
	dictPath, dictDz, err := findSubFile(prefix, "dict", "dz")
	if err != nil {
		return nil, err
	}

	synPath := prefix + ".syn"
	if _, err := os.Stat(synPath); err != nil {
		synPath = ""
	}

	return &dictFiles{
		ifoPath:  filepath.Join(dir, ifoName),
		idxPath:  idxPath,
		idxGz:    idxGz,
		dictPath: dictPath,
		dictDz:   dictDz,
		synPath:  synPath,
	}, nil
}

// findSubFile resolves prefix.name, falling back to
// prefix.name.compressSuffix when the plain form is absent.
func findSubFile(prefix, name, compressSuffix string) (path string, compressed bool, err error) {
	plain := prefix + "." + name
	if _, err := os.Stat(plain); err == nil {
		return plain, false, nil
	}

	withSuffix := plain + "." + compressSuffix
	if _, err := os.Stat(withSuffix); err == nil {
		return withSuffix, true, nil
	}

	return "", false, staterr.New(staterr.KindNoFileFound, name, nil)
}

// parseIfo opens and parses the .ifo file at path.
func parseIfo(path string) (*ifo.Ifo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "ifo", err)
	}
	defer f.Close()

	return ifo.Parse(f)
}

// parseIdx opens and parses the .idx (+ optional .syn) files named by
// files, gunzipping the .idx stream first if it is stored as .idx.gz.
// Both files are closed before parseIdx returns: the parsed [idxfile.Index]
// is held entirely in memory.
func parseIdx(files *dictFiles, inf *ifo.Ifo) (*idxfile.Index, error) {
	f, err := os.Open(files.idxPath)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "idx", err)
	}
	defer f.Close()

	r, err := idxfile.GunzipIfNeeded(f, files.idxGz)
	if err != nil {
		return nil, err
	}

	var synFile *os.File
	if files.synPath != "" {
		synFile, err = os.Open(files.synPath)
		if err != nil {
			return nil, staterr.New(staterr.KindFailedOpenFile, "syn", err)
		}
		defer synFile.Close()
	}

	if synFile == nil {
		return idxfile.Parse(r, inf, nil)
	}
	return idxfile.Parse(r, inf, synFile)
}
