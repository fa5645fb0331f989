// Package ifo parses StarDict ".ifo" metadata files: UTF-8 text, one
// key=value pair per line. See https://linux.die.net/man/5/stardict.
package ifo

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-stardict/stardict/internal/staterr"
)

// Version is the StarDict dictionary format version declared by the
// .ifo "version" field.
type Version int

const (
	// V242 is StarDict format version 2.4.2.
	V242 Version = iota

	// V300 is StarDict format version 3.0.0, which adds idxoffsetbits.
	V300
)

// Ifo holds the parsed contents of a .ifo metadata file. Fields not
// recognized by this parser are ignored, matching spec.md's "unknown
// keys ignored" rule.
type Ifo struct {
	Version          Version
	BookName         string
	WordCount        int
	SynWordCount     int
	IdxFileSize      int
	IdxOffsetBits    int
	Author           string
	Email            string
	Website          string
	Description      string
	Date             string
	SameTypeSequence string
	DictType         string
}

// Parse reads a .ifo file from r. idxoffsetbits defaults to 32 and is
// only meaningful for V300; it is ignored for V242 by every caller in
// this module.
func Parse(r io.Reader) (*Ifo, error) {
	ifo := &Ifo{
		Version:       V242,
		IdxOffsetBits: 32,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			// Lines without '=' (e.g. the StarDict magic header line)
			// carry no key/value pair and are silently ignored.
			continue
		}
		key := line[:eq]
		val := line[eq+1:]

		var err error
		switch key {
		case "version":
			switch val {
			case "2.4.2":
				ifo.Version = V242
			case "3.0.0":
				ifo.Version = V300
			default:
				return nil, staterr.New(staterr.KindInvalidVersion, val, nil)
			}
		case "bookname":
			ifo.BookName = val
		case "wordcount":
			ifo.WordCount, err = strconv.Atoi(val)
		case "synwordcount":
			ifo.SynWordCount, err = strconv.Atoi(val)
		case "idxfilesize":
			ifo.IdxFileSize, err = strconv.Atoi(val)
		case "idxoffsetbits":
			ifo.IdxOffsetBits, err = strconv.Atoi(val)
		case "author":
			ifo.Author = val
		case "email":
			ifo.Email = val
		case "website":
			ifo.Website = val
		case "description":
			ifo.Description = val
		case "date":
			ifo.Date = val
		case "sametypesequence":
			ifo.SameTypeSequence = val
		case "dicttype":
			ifo.DictType = val
		default:
			// Unknown keys are ignored.
		}
		if err != nil {
			return nil, staterr.New(staterr.KindInvalidIfoValue, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, staterr.New(staterr.KindFailedOpenFile, "ifo", err)
	}

	return ifo, nil
}
