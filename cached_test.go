package stardict

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestOpenCached_EventuallyLoaded covers spec.md invariant 6 (cached
// lookups are observationally equivalent to uncached ones) by driving
// OpenCached against the same on-disk fixture [writeFixtureDir] builds
// for the uncached path.
func TestOpenCached_EventuallyLoaded(t *testing.T) {
	dictDir := writeFixtureDir(t)
	appName := filepath.Base(t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cached, err := OpenCached(dictDir, appName)
	require.NoError(t, err)
	defer cached.Close()

	uncached, err := Open(dictDir)
	require.NoError(t, err)
	defer uncached.Close()

	want, ok := uncached.Lookup("hello")
	require.True(t, ok)

	require.Eventually(t, func() bool {
		got, found, err := cached.Lookup("hello")
		if err != nil || !found {
			return false
		}
		return len(got) == len(want) &&
			got[0].Headword == want[0].Headword &&
			len(got[0].Segments) == len(want[0].Segments) &&
			got[0].Segments[0] == WordDefinitionSegment(want[0].Segments[0])
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpenCached_NotFound(t *testing.T) {
	dictDir := writeFixtureDir(t)
	appName := filepath.Base(t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cached, err := OpenCached(dictDir, appName)
	require.NoError(t, err)
	defer cached.Close()

	require.Eventually(t, func() bool {
		_, found, err := cached.Lookup("hello")
		return err == nil && found
	}, 2*time.Second, 10*time.Millisecond)

	_, found, err := cached.Lookup("nonexistent")
	require.NoError(t, err)
	require.False(t, found)
}
