package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/dictfile"
	"github.com/go-stardict/stardict/internal/idxfile"
	"github.com/go-stardict/stardict/internal/staterr"
)

// Source lazily produces the parsed idx/dict pair needed to populate a
// cache. It is only invoked when population is actually required,
// mirroring stardict_sqlite.rs's new() only parsing .idx/.dict when no
// usable cache file already exists.
type Source func() (*idxfile.Index, *dictfile.Dict, error)

// Cache is a handle to one dictionary's persistent lookup cache. It is
// not safe for concurrent use by multiple goroutines without external
// synchronization beyond what Lookup itself provides (state is guarded
// internally, but the *Cache value should not be shared without care
// for the embedded mutex's zero-value semantics).
type Cache struct {
	path   string
	hasSyn bool

	mu    sync.Mutex
	state cacheState
}

// cacheState models the Rust InnerDb enum: exactly one of loadedState,
// initByOtherState, or initSelfState is active at a time.
type cacheState interface {
	lookup(hasSyn bool, word string) ([]Definition, cacheState, error)
}

// loadedState is the terminal state: a read-only handle to a fully
// populated cache.
type loadedState struct {
	db *sql.DB
}

func (s *loadedState) lookup(hasSyn bool, word string) ([]Definition, cacheState, error) {
	defs, err := lookupDB(s.db, hasSyn, word)
	return defs, s, err
}

// initByOtherState is reached when another process's populate run was
// already in progress at Open time.
type initByOtherState struct {
	path string
	db   *sql.DB
}

func (s *initByOtherState) lookup(hasSyn bool, word string) ([]Definition, cacheState, error) {
	complete, err := checkInitComplete(s.db)
	if err != nil {
		return nil, s, err
	}
	if !complete {
		return nil, s, staterr.ErrCacheInitiating
	}

	reopened, err := openReadOnly(s.path)
	if err != nil {
		return nil, s, err
	}
	s.db.Close()
	next := &loadedState{db: reopened}
	return next.lookup(hasSyn, word)
}

// initSelfState is reached when this process itself is populating the
// cache in the background. mu is held by the populate goroutine for
// the duration of the import transaction.
type initSelfState struct {
	path   string
	mu     *sync.Mutex
	writer *sql.DB
}

func (s *initSelfState) lookup(hasSyn bool, word string) ([]Definition, cacheState, error) {
	if !s.mu.TryLock() {
		// Population is still running in the background.
		return nil, s, staterr.ErrCacheInitiating
	}
	defer s.mu.Unlock()

	complete, err := checkInitComplete(s.writer)
	if err != nil {
		return nil, s, err
	}
	if !complete {
		return nil, s, staterr.ErrCacheInitiating
	}

	s.writer.Close()
	reopened, err := openReadOnly(s.path)
	if err != nil {
		return nil, s, err
	}
	next := &loadedState{db: reopened}
	return next.lookup(hasSyn, word)
}

// Open resolves idxCachePath, either attaching to an existing,
// completed cache file; joining an in-progress population by another
// live process; or starting a new population in the background (after
// discarding a stale cache file left by a process that died mid-init).
// source is only invoked in the last case.
func Open(idxCachePath string, inf *ifo.Ifo, hasSyn bool, source Source) (*Cache, error) {
	if _, err := os.Stat(idxCachePath); err == nil {
		state, err := loadExisting(idxCachePath)
		if err != nil {
			return nil, err
		}
		if state != nil {
			return &Cache{path: idxCachePath, hasSyn: hasSyn, state: state}, nil
		}
		// loadExisting returned nil: a stale, abandoned cache file was
		// removed; fall through to start a fresh population.
	} else if !os.IsNotExist(err) {
		return nil, staterr.New(staterr.KindFailedOpenCache, idxCachePath, err)
	}

	return startInit(idxCachePath, inf, hasSyn, source)
}

// loadExisting inspects an on-disk cache file: returns a loadedState if
// population already succeeded, an initByOtherState if a live process
// is still populating it, or (nil, nil) after removing the file if the
// process that started populating it is no longer alive.
func loadExisting(idxCachePath string) (cacheState, error) {
	db, err := openReadOnly(idxCachePath)
	if err != nil {
		return nil, err
	}

	complete, err := checkInitComplete(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if complete {
		return &loadedState{db: db}, nil
	}

	alive, err := otherProcessAlive(db, idxCachePath)
	if err != nil {
		db.Close()
		return nil, err
	}
	if alive {
		return &initByOtherState{path: idxCachePath, db: db}, nil
	}

	db.Close()
	if err := os.Remove(idxCachePath); err != nil {
		return nil, staterr.New(staterr.KindFailedOpenCache, idxCachePath, err)
	}
	return nil, nil
}

// startInit creates a fresh cache file, writes the schema and this
// process's PID, and launches the population pass in the background.
func startInit(idxCachePath string, inf *ifo.Ifo, hasSyn bool, source Source) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(idxCachePath), 0o755); err != nil {
		return nil, staterr.New(staterr.KindFailedOpenCache, idxCachePath, err)
	}

	writer, err := sql.Open(sqliteDriver, idxCachePath)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenCache, idxCachePath, err)
	}
	if err := initSchema(writer); err != nil {
		writer.Close()
		return nil, errors.Wrap(err, "init cache schema")
	}

	idx, dict, err := source()
	if err != nil {
		writer.Close()
		return nil, err
	}

	var mu sync.Mutex
	mu.Lock()
	go populate(idxCachePath, &mu, writer, inf, idx, dict)

	state := &initSelfState{path: idxCachePath, mu: &mu, writer: writer}
	return &Cache{path: idxCachePath, hasSyn: hasSyn, state: state}, nil
}

// populate runs the one-time import under mu, logging start/end timing
// in the style of dselans-mmmbop's checkpoint package. It is the only
// background, cross-process-visible operation in this library, which
// is why it is the one place this package logs at all.
func populate(idxCachePath string, mu *sync.Mutex, writer *sql.DB, inf *ifo.Ifo, idx *idxfile.Index, dict *dictfile.Dict) {
	defer mu.Unlock()
	defer dict.Close()

	startedAt := time.Now()
	logrus.Debugf("cache population started for %q at %s", idxCachePath, startedAt)
	defer func() {
		logrus.Debugf("cache population for %q took %s", idxCachePath, time.Since(startedAt))
	}()

	if err := importCache(writer, inf, idx, dict); err != nil {
		logrus.Errorf("cache population failed for %q: %s", idxCachePath, err)
	}
}

// otherProcessAlive reports whether the PID recorded in db's meta
// table refers to a still-running process.
func otherProcessAlive(db *sql.DB, idxCachePath string) (bool, error) {
	pid, err := initPID(db)
	if err != nil {
		return false, staterr.New(staterr.KindInvalidDictCache, idxCachePath, err)
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		// No such process: the populating process is gone.
		return false, nil
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false, nil
	}
	return running, nil
}

func openReadOnly(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, staterr.New(staterr.KindFailedOpenCache, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, staterr.New(staterr.KindFailedOpenCache, path, err)
	}
	return db, nil
}

// Lookup resolves word against the cache, advancing the internal state
// machine (e.g. from InitByOther to Loaded) as population completes.
// It returns *staterr.StardictError with KindCacheInitiating if the
// cache is not yet ready to answer.
func (c *Cache) Lookup(word string) ([]Definition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defs, next, err := c.state.lookup(c.hasSyn, word)
	c.state = next
	return defs, err
}

// Close releases the cache's current database handle. It does not
// wait for a background population run to finish, and while this
// process is the one populating the cache it leaves the writer handle
// open: populate does not close it either.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch s := c.state.(type) {
	case *loadedState:
		return s.db.Close()
	case *initByOtherState:
		return s.db.Close()
	}
	return nil
}
