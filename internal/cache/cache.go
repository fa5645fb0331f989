// Package cache implements the persistent, multi-process-coordinated
// lookup cache described in spec.md §4.6-4.7: a relational SQLite
// store populated once per dictionary, shared read-only across every
// subsequent process that opens the same dictionary directory.
package cache

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-stardict/stardict/ifo"
	"github.com/go-stardict/stardict/internal/dictfile"
	"github.com/go-stardict/stardict/internal/idxfile"
)

// sqliteDriver is the database/sql driver name registered by
// mattn/go-sqlite3's init().
const sqliteDriver = "sqlite3"

// Segment mirrors dictfile.Segment for cache records: a (types, text)
// pair decoded once at population time and stored verbatim.
type Segment struct {
	Types string
	Text  string
}

// Definition is one cached lookup result: a canonical headword plus
// its ordered segments.
type Definition struct {
	Headword string
	Segments []Segment
}

// Dir resolves the platform user cache directory joined with appName,
// per spec.md §6. It is the default root passed to Open by callers
// that don't supply their own cache location.
func Dir(appName string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve user cache dir")
	}
	return filepath.Join(base, appName), nil
}

// initSchema creates the word/segment/alias/meta tables and records
// this process's PID as the in-progress initializer, matching
// stardict_sqlite.rs's init_db.
func initSchema(db *sql.DB) error {
	const schema = `
create table meta(key text, value text);
create table word(id integer primary key, word text, definition text);
create index word_idx on word(word);
create table segment(id integer primary key, word_id integer, types text, text text);
create index segment_idx on segment(word_id);
create table alias(id integer primary key, word text, aliases text);
create index alias_idx on alias(word);
insert into meta(key, value) values ('version', '1');
insert into meta(key, value) values ('init_status', 'start');
`
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "create cache schema")
	}
	if _, err := db.Exec(`insert into meta(key, value) values ('init_pid', ?)`, os.Getpid()); err != nil {
		return errors.Wrap(err, "record init pid")
	}
	return nil
}

// checkInitComplete reports whether a prior (possibly this process's)
// population run finished successfully.
func checkInitComplete(db *sql.DB) (bool, error) {
	var status string
	err := db.QueryRow(`select value from meta where key = 'init_status'`).Scan(&status)
	if err != nil {
		return false, errors.Wrap(err, "read init_status")
	}
	return status == "success", nil
}

// initPID returns the PID recorded by whichever process is or was
// populating this cache file.
func initPID(db *sql.DB) (int, error) {
	var pidStr string
	err := db.QueryRow(`select value from meta where key = 'init_pid'`).Scan(&pidStr)
	if err != nil {
		return 0, errors.Wrap(err, "read init_pid")
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid init_pid %q", pidStr)
	}
	return pid, nil
}

// importCache runs the one-time population pass: every idx entry's
// decoded definition is inserted into word/segment, and the syn map
// into alias, inside a single transaction, then init_status flips to
// "success". Entries that fail to decode are skipped, matching
// spec.md §4.6's "tolerate partial corruption" rule.
func importCache(db *sql.DB, inf *ifo.Ifo, idx *idxfile.Index, dict *dictfile.Dict) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin import transaction")
	}
	defer tx.Rollback()

	wordStmt, err := tx.Prepare(`insert into word (word, definition) values (?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare word insert")
	}
	defer wordStmt.Close()

	segmentStmt, err := tx.Prepare(`insert into segment (word_id, types, text) values (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare segment insert")
	}
	defer segmentStmt.Close()

	for _, entry := range idx.Entries() {
		segments, ok := dict.Lookup(inf, entry)
		if !ok {
			continue
		}

		key := strings.ToLower(entry.Headword)
		res, err := wordStmt.Exec(key, entry.Headword)
		if err != nil {
			return errors.Wrap(err, "insert word")
		}
		wordID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "read word id")
		}

		for _, seg := range segments {
			if _, err := segmentStmt.Exec(wordID, seg.Types, seg.Text); err != nil {
				return errors.Wrap(err, "insert segment")
			}
		}
	}

	if synMap := idx.SynMap(); synMap != nil {
		aliasStmt, err := tx.Prepare(`insert into alias (word, aliases) values (?, ?)`)
		if err != nil {
			return errors.Wrap(err, "prepare alias insert")
		}
		defer aliasStmt.Close()

		for key, aliases := range synMap {
			payload, err := json.Marshal(aliases)
			if err != nil {
				return errors.Wrap(err, "marshal aliases")
			}
			if _, err := aliasStmt.Exec(key, string(payload)); err != nil {
				return errors.Wrap(err, "insert alias")
			}
		}
	}

	if _, err := tx.Exec(`update meta set value = 'success' where key = 'init_status'`); err != nil {
		return errors.Wrap(err, "mark init success")
	}

	return tx.Commit()
}

// queryDefinition fetches the single word row (and its segments)
// matching lowercaseWord, or nil if absent.
func queryDefinition(db *sql.DB, lowercaseWord string) (*Definition, error) {
	var wordID int64
	var headword string
	err := db.QueryRow(`select id, definition from word where word = ?`, lowercaseWord).Scan(&wordID, &headword)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "query word")
	}

	rows, err := db.Query(`select types, text from segment where word_id = ?`, wordID)
	if err != nil {
		return nil, errors.Wrap(err, "query segments")
	}
	defer rows.Close()

	def := &Definition{Headword: headword}
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.Types, &seg.Text); err != nil {
			return nil, errors.Wrap(err, "scan segment")
		}
		def.Segments = append(def.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate segments")
	}

	return def, nil
}

// lookupDB resolves word against the loaded cache: a direct hit plus
// every synonym alias, deduplicated by canonical headword, preserving
// direct-hit-first ordering (spec.md §4.5).
func lookupDB(db *sql.DB, hasSyn bool, lowercaseWord string) ([]Definition, error) {
	var results []Definition
	found := map[string]struct{}{}

	if def, err := queryDefinition(db, lowercaseWord); err != nil {
		return nil, err
	} else if def != nil {
		results = append(results, *def)
		found[def.Headword] = struct{}{}
	}

	if hasSyn {
		var aliasesJSON string
		err := db.QueryRow(`select aliases from alias where word = ?`, lowercaseWord).Scan(&aliasesJSON)
		switch {
		case err == sql.ErrNoRows:
			// no aliases recorded for this word; fall through.
		case err != nil:
			return nil, errors.Wrap(err, "query aliases")
		default:
			var aliases []string
			if err := json.Unmarshal([]byte(aliasesJSON), &aliases); err != nil {
				return nil, errors.Wrap(err, "unmarshal aliases")
			}
			for _, alias := range aliases {
				def, err := queryDefinition(db, alias)
				if err != nil {
					return nil, err
				}
				if def == nil {
					continue
				}
				if _, dup := found[def.Headword]; dup {
					continue
				}
				results = append(results, *def)
				found[def.Headword] = struct{}{}
			}
		}
	}

	return results, nil
}
