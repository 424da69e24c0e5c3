package stega

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bodgit/stega/lsb"
	_ "github.com/mattn/go-sqlite3"
)

// Journal records every carrier written by Hide.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is a single carrier recorded in the journal.
type Entry struct {
	SHA1     string
	Path     string
	Payload  int
	Capacity int
	Created  time.Time
}

// NewJournal opens the SQLite database in file, creating it if necessary.
func NewJournal(file string) (*Journal, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS carrier (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, path TEXT NOT NULL, payload INTEGER NOT NULL, capacity INTEGER NOT NULL, created INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{
		db:  db,
		now: time.Now,
	}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores the carrier written to path along with the length of the
// payload hidden in it. Recording the same carrier again updates the entry.
func (j *Journal) Record(path string, carrier []byte, payload int) error {
	if _, err := j.db.Exec("INSERT OR REPLACE INTO carrier (sha1, path, payload, capacity, created) VALUES (?, ?, ?, ?, ?)", sha1Sum(carrier), path, payload, lsb.Capacity(len(carrier))-1, j.now().Unix()); err != nil {
		return err
	}
	return nil
}

// FindBySHA1 returns the entry for the carrier with the given checksum, or nil
// if it was never recorded.
func (j *Journal) FindBySHA1(sha string) (*Entry, error) {
	var e Entry
	var created int64
	switch err := j.db.QueryRow("SELECT sha1, path, payload, capacity, created FROM carrier WHERE sha1 = ?", sha).Scan(&e.SHA1, &e.Path, &e.Payload, &e.Capacity, &created); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		e.Created = time.Unix(created, 0)
		return &e, nil
	default:
		return nil, err
	}
}

// Entries returns every recorded carrier, oldest first.
func (j *Journal) Entries() ([]Entry, error) {
	rows, err := j.db.Query("SELECT sha1, path, payload, capacity, created FROM carrier ORDER BY created, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.SHA1, &e.Path, &e.Payload, &e.Capacity, &created); err != nil {
			return nil, err
		}
		e.Created = time.Unix(created, 0)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
