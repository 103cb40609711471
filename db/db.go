package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"dwqueries/models"
)

const (
	sqlFilePrefix    = "sql_file:"
	transcriptPrefix = "transcript:"
)

type DB struct {
	badgerDB *badger.DB
}

func New(dbPath string) (*DB, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging for cleaner output

	return open(opts)
}

// NewInMemory opens a store that lives only as long as the process.
func NewInMemory() (*DB, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*DB, error) {
	badgerDB, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &DB{badgerDB: badgerDB}, nil
}

func (d *DB) Close() error {
	return d.badgerDB.Close()
}

func (d *DB) StoreSQLFile(name string, content string) error {
	return d.badgerDB.Update(func(txn *badger.Txn) error {
		key := []byte(sqlFilePrefix + name)
		return txn.Set(key, []byte(content))
	})
}

// GetSQLFiles returns the stored query files in key order.
func (d *DB) GetSQLFiles() ([]models.SQLFile, error) {
	var sqlFiles []models.SQLFile

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sqlFilePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), sqlFilePrefix)

			err := item.Value(func(val []byte) error {
				sqlFiles = append(sqlFiles, models.SQLFile{
					Name:    name,
					Content: string(val),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return sqlFiles, err
}

func transcriptKey(sessionID string, seq int) []byte {
	return []byte(fmt.Sprintf("%s%s:%08d", transcriptPrefix, sessionID, seq))
}

// AppendTranscript stores one run of a session.
func (d *DB) AppendTranscript(entry models.TranscriptEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return d.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(transcriptKey(entry.SessionID, entry.Seq), data)
	})
}

// GetTranscriptEntries returns the runs of a session in execution order.
func (d *DB) GetTranscriptEntries(sessionID string) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(transcriptPrefix + sessionID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry models.TranscriptEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return entries, err
}

// GetTranscript returns the full transcript text of a session.
func (d *DB) GetTranscript(sessionID string) (string, error) {
	entries, err := d.GetTranscriptEntries(sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Text)
	}
	return b.String(), nil
}

// ListSessions returns the ids of every session with a stored transcript.
func (d *DB) ListSessions() ([]string, error) {
	seen := map[string]bool{}

	err := d.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(transcriptPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), transcriptPrefix)
			if i := strings.LastIndex(rest, ":"); i > 0 {
				seen[rest[:i]] = true
			}
		}
		return nil
	})

	sessions := make([]string, 0, len(seen))
	for s := range seen {
		sessions = append(sessions, s)
	}
	sort.Strings(sessions)
	return sessions, err
}
