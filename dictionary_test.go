package stardict

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// idxRecord builds one raw .idx record: NUL-terminated headword plus
// 4-byte big-endian offset and size (V242 width).
func idxRecord(word string, offset, size uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(word)
	buf.WriteByte(0)
	binary.Write(&buf, binary.BigEndian, offset)
	binary.Write(&buf, binary.BigEndian, size)
	return buf.Bytes()
}

// synRecord builds one raw .syn record: NUL-terminated alias plus a
// 4-byte big-endian index into the raw .idx stream.
func synRecord(alias string, index uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString(alias)
	buf.WriteByte(0)
	binary.Write(&buf, binary.BigEndian, index)
	return buf.Bytes()
}

// writeFixtureDir materializes a minimal, uncompressed StarDict
// dictionary directory ("hello"/"world" entries, sametypesequence "m")
// and returns its path.
func writeFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	const ifoData = `StarDict's dict ifo file
version=2.4.2
bookname=Test Dictionary
wordcount=2
sametypesequence=m
`
	mustWriteFile(t, filepath.Join(dir, "test.ifo"), []byte(ifoData))

	var idxData bytes.Buffer
	idxData.Write(idxRecord("hello", 0, 5))
	idxData.Write(idxRecord("world", 5, 5))
	mustWriteFile(t, filepath.Join(dir, "test.idx"), idxData.Bytes())

	mustWriteFile(t, filepath.Join(dir, "test.dict"), []byte("helloworld"))

	return dir
}

// writeSynonymFixtureDir materializes spec.md scenario 3: "colour" and
// "color" both indexed, with .syn declaring "colour" as an alias for
// "color"'s raw-entry index.
func writeSynonymFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	const ifoData = `version=2.4.2
bookname=Synonym Dictionary
sametypesequence=m
`
	mustWriteFile(t, filepath.Join(dir, "test.ifo"), []byte(ifoData))

	var idxData bytes.Buffer
	idxData.Write(idxRecord("colour", 0, 6))
	idxData.Write(idxRecord("color", 6, 5))
	mustWriteFile(t, filepath.Join(dir, "test.idx"), idxData.Bytes())

	mustWriteFile(t, filepath.Join(dir, "test.dict"), []byte("colourcolor"))

	var synData bytes.Buffer
	synData.Write(synRecord("colour", 1)) // index 1 = "color"
	mustWriteFile(t, filepath.Join(dir, "test.syn"), synData.Bytes())

	return dir
}

func mustWriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", path, err)
	}
}

func TestOpen_PlainDictionary(t *testing.T) {
	t.Parallel()

	dir := writeFixtureDir(t)
	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if got, want := d.BookName(), "Test Dictionary"; got != want {
		t.Errorf("BookName() = %q, want %q", got, want)
	}
}

func TestOpen_MissingIfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Open(dir)
	assertKind(t, err, KindNoFileFound)
}

func TestOpen_MissingDict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "test.ifo"), []byte("version=2.4.2\n"))
	mustWriteFile(t, filepath.Join(dir, "test.idx"), idxRecord("hello", 0, 5))

	_, err := Open(dir)
	assertKind(t, err, KindNoFileFound)
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	serr, ok := err.(*StardictError)
	if !ok {
		t.Fatalf("error = %v (%T), want *StardictError", err, err)
	}
	if serr.Kind != kind {
		t.Errorf("Kind = %v, want %v", serr.Kind, kind)
	}
}
