package ifo

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-stardict/stardict/internal/staterr"
)

func TestParse_V242Defaults(t *testing.T) {
	t.Parallel()

	const data = `StarDict's dict ifo file
version=2.4.2
bookname=Test Dictionary
wordcount=100
idxfilesize=2000
author=Someone
sametypesequence=m
`
	got, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := &Ifo{
		Version:          V242,
		BookName:         "Test Dictionary",
		WordCount:        100,
		IdxFileSize:      2000,
		IdxOffsetBits:    32,
		Author:           "Someone",
		SameTypeSequence: "m",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse (-want, +got):\n%s", diff)
	}
}

func TestParse_V300IdxOffsetBits64(t *testing.T) {
	t.Parallel()

	const data = `version=3.0.0
idxoffsetbits=64
bookname=Big Dictionary
`
	got, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Version != V300 {
		t.Errorf("Version = %v, want V300", got.Version)
	}
	if got.IdxOffsetBits != 64 {
		t.Errorf("IdxOffsetBits = %d, want 64", got.IdxOffsetBits)
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	t.Parallel()

	const data = `version=2.4.2
some_future_field=whatever
bookname=Test
`
	got, err := Parse(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.BookName != "Test" {
		t.Errorf("BookName = %q, want %q", got.BookName, "Test")
	}
}

func TestParse_InvalidVersion(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("version=9.9.9\n"))
	assertKind(t, err, staterr.KindInvalidVersion)
}

func TestParse_InvalidIfoValue(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("version=2.4.2\nwordcount=notanumber\n"))
	assertKind(t, err, staterr.KindInvalidIfoValue)
}

func assertKind(t *testing.T, err error, kind staterr.Kind) {
	t.Helper()
	serr, ok := err.(*staterr.StardictError)
	if !ok {
		t.Fatalf("error = %v (%T), want *staterr.StardictError", err, err)
	}
	if serr.Kind != kind {
		t.Errorf("Kind = %v, want %v", serr.Kind, kind)
	}
}
