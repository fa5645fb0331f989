package stardict

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetResource_Found(t *testing.T) {
	t.Parallel()

	dir := writeFixtureDir(t)
	if err := os.MkdirAll(filepath.Join(dir, "res", "img"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	mustWriteFile(t, filepath.Join(dir, "res", "img", "pic.png"), []byte("binarydata"))

	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	got, err := d.GetResource("/img/pic.png")
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if string(got) != "binarydata" {
		t.Errorf("GetResource = %q, want %q", got, "binarydata")
	}
}

func TestGetResource_NotFound(t *testing.T) {
	t.Parallel()

	dir := writeFixtureDir(t)
	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	_, err = d.GetResource("img/missing.png")
	assertKind(t, err, KindNoResourceFound)
}

func TestGetResource_EmptyHref(t *testing.T) {
	t.Parallel()

	dir := writeFixtureDir(t)
	d, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	for _, href := range []string{"", "/"} {
		_, err := d.GetResource(href)
		assertKind(t, err, KindNoResourceFound)
	}
}
