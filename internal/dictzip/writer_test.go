package dictzip

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildFixture compresses data into a dictzip stream with the given
// chunk size, returning the compressed bytes.
func buildFixture(t *testing.T, data []byte, chunkSize int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriterLevel(&buf, BestSpeed, chunkSize)
	if err != nil {
		t.Fatalf("NewWriterLevel: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)

	fixture := buildFixture(t, data, 64)

	r, err := NewReader(bytes.NewReader(fixture))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("round trip (-want, +got):\n%s", diff)
	}
}

func TestWriterChunkCount(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("x"), 1000)
	fixture := buildFixture(t, data, 100)

	r, err := NewReader(bytes.NewReader(fixture))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if diff := cmp.Diff(100, r.ChunkLength()); diff != "" {
		t.Errorf("ChunkLength (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(10, len(r.Sizes())); diff != "" {
		t.Errorf("len(Sizes()) (-want, +got):\n%s", diff)
	}
}
