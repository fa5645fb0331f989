package cache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-stardict/stardict/internal/dictfile"
	"github.com/go-stardict/stardict/internal/idxfile"
	"github.com/go-stardict/stardict/internal/staterr"
)

// TestInitSelfState_CacheInitiatingUntilPopulationDone drives
// initSelfState directly (bypassing Open) so the population step can
// be held open deterministically, covering spec.md scenario 6: a
// lookup made while this process's own population is still running
// gets *StardictError{Kind: KindCacheInitiating}, and succeeds once
// the populate goroutine releases its mutex.
func TestInitSelfState_CacheInitiatingUntilPopulationDone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.sqlite")

	writer, err := sql.Open(sqliteDriver, cachePath)
	require.NoError(t, err)
	require.NoError(t, initSchema(writer))

	inf, idx, dict := buildFixture(t)

	var mu sync.Mutex
	mu.Lock()
	release := make(chan struct{})
	go func() {
		<-release
		_ = importCache(writer, inf, idx, dict)
		mu.Unlock()
	}()

	c := &Cache{path: cachePath, hasSyn: true, state: &initSelfState{
		path:   cachePath,
		mu:     &mu,
		writer: writer,
	}}

	_, lookupErr := c.Lookup("hello")
	var serr *staterr.StardictError
	require.True(t, errors.As(lookupErr, &serr))
	require.Equal(t, staterr.KindCacheInitiating, serr.Kind)

	close(release)

	require.Eventually(t, func() bool {
		defs, err := c.Lookup("hello")
		return err == nil && len(defs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpen_FreshCache_EventuallyLoaded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.sqlite")

	inf, idx, dict := buildFixture(t)

	c, err := Open(cachePath, inf, true, func() (*idxfile.Index, *dictfile.Dict, error) {
		return idx, dict, nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		defs, err := c.Lookup("hello")
		return err == nil && len(defs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpen_ExistingCompletedCache_LoadsDirectly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.sqlite")

	inf, idx, dict := buildFixture(t)

	db, err := sql.Open(sqliteDriver, cachePath)
	require.NoError(t, err)
	require.NoError(t, initSchema(db))
	require.NoError(t, importCache(db, inf, idx, dict))
	require.NoError(t, db.Close())

	called := false
	c, err := Open(cachePath, inf, true, func() (*idxfile.Index, *dictfile.Dict, error) {
		called = true
		return nil, nil, nil
	})
	require.NoError(t, err)
	require.False(t, called, "Open must not invoke source when the cache is already complete")

	defs, err := c.Lookup("hello")
	require.NoError(t, err)
	require.Len(t, defs, 1)
}

// TestOpen_AbandonedCache_Repopulates covers the case where a cache
// file was left mid-init by a process that is no longer running: it
// is discarded and repopulated rather than treated as InitByOther
// forever.
func TestOpen_AbandonedCache_Repopulates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.sqlite")

	db, err := sql.Open(sqliteDriver, cachePath)
	require.NoError(t, err)
	require.NoError(t, initSchema(db))
	// Overwrite init_pid with a PID essentially guaranteed not to be
	// running, simulating a process that died mid-population.
	_, err = db.Exec(`update meta set value = '999999' where key = 'init_pid'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	inf, idx, dict := buildFixture(t)

	c, err := Open(cachePath, inf, true, func() (*idxfile.Index, *dictfile.Dict, error) {
		return idx, dict, nil
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		defs, err := c.Lookup("hello")
		return err == nil && len(defs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOpen_InitByOtherLiveProcess_ReturnsCacheInitiating(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.sqlite")

	db, err := sql.Open(sqliteDriver, cachePath)
	require.NoError(t, err)
	require.NoError(t, initSchema(db))
	// The current test process's own PID is, by definition, alive.
	_, err = db.Exec(`update meta set value = ? where key = 'init_pid'`, os.Getpid())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	inf, _, _ := buildFixture(t)

	called := false
	c, err := Open(cachePath, inf, true, func() (*idxfile.Index, *dictfile.Dict, error) {
		called = true
		return nil, nil, nil
	})
	require.NoError(t, err)
	require.False(t, called, "Open must not repopulate while the recorded PID is alive")

	_, lookupErr := c.Lookup("hello")
	var serr *staterr.StardictError
	require.True(t, errors.As(lookupErr, &serr))
	require.Equal(t, staterr.KindCacheInitiating, serr.Kind)
}

func TestOpen_CreatesCacheDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "nested", "test.sqlite")

	inf, idx, dict := buildFixture(t)
	c, err := Open(cachePath, inf, true, func() (*idxfile.Index, *dictfile.Dict, error) {
		return idx, dict, nil
	})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = os.Stat(cachePath)
	require.NoError(t, err)
}
