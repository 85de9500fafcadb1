// Package sqlite implements the key/value database abstraction on top of a
// single SQLite file.
//
// Buckets are rows of a table and entries are keyed by (bucket, key). The
// database is opened with a single connection so that transactions are
// serialized the same way bbolt serializes its writers.
package sqlite

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"

	"go.dedis.ch/matchgame"
	"go.dedis.ch/matchgame/core/store/kv"
	"golang.org/x/xerrors"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS buckets (
		name BLOB PRIMARY KEY
	);`,
	`CREATE TABLE IF NOT EXISTS entries (
		bucket BLOB NOT NULL REFERENCES buckets(name),
		key    BLOB NOT NULL,
		value  BLOB NOT NULL,
		PRIMARY KEY (bucket, key)
	);`,
}

// DB is the SQLite implementation of the key/value database.
//
// - implements kv.DB
type DB struct {
	db *sql.DB
}

// New opens the database file at the given path and creates the schema if
// necessary.
func New(path string) (*DB, error) {
	if path == "" {
		return nil, xerrors.New("empty db path")
	}

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, xerrors.Errorf("failed to create folder: %v", err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open db: %v", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range append(append([]string{}, pragmas...), schema...) {
		_, err = db.Exec(stmt)
		if err != nil {
			db.Close()
			return nil, xerrors.Errorf("failed to initialize db: %v", err)
		}
	}

	return &DB{db: db}, nil
}

// View implements kv.DB. The transaction is always rolled back.
func (d *DB) View(fn func(kv.ReadableTx) error) error {
	txn, err := d.db.Begin()
	if err != nil {
		return xerrors.Errorf("failed to begin: %v", err)
	}

	defer txn.Rollback()

	return fn(&dbTx{txn: txn})
}

// Update implements kv.DB. The transaction is committed when the callback
// returns without error, and the commit callbacks are then executed in the
// order they were registered.
func (d *DB) Update(fn func(kv.WritableTx) error) error {
	txn, err := d.db.Begin()
	if err != nil {
		return xerrors.Errorf("failed to begin: %v", err)
	}

	tx := &dbTx{txn: txn}

	err = fn(tx)
	if err != nil {
		txn.Rollback()
		return err
	}

	err = txn.Commit()
	if err != nil {
		return xerrors.Errorf("failed to commit: %v", err)
	}

	for _, cb := range tx.onCommit {
		cb()
	}

	return nil
}

// Close implements kv.DB.
func (d *DB) Close() error {
	return d.db.Close()
}

// dbTx is a transaction of the SQLite database.
//
// - implements kv.WritableTx
type dbTx struct {
	txn      *sql.Tx
	onCommit []func()
}

// GetBucket implements kv.ReadableTx. It returns nil if the bucket does not
// exist or cannot be read.
func (tx *dbTx) GetBucket(name []byte) kv.Bucket {
	var found int

	err := tx.txn.QueryRow("SELECT 1 FROM buckets WHERE name = ?", name).Scan(&found)
	if err != nil {
		if err != sql.ErrNoRows {
			matchgame.Logger.Warn().Err(err).Msg("failed to read bucket")
		}

		return nil
	}

	return &bucket{txn: tx.txn, name: append([]byte{}, name...)}
}

// GetBucketOrCreate implements kv.WritableTx.
func (tx *dbTx) GetBucketOrCreate(name []byte) (kv.Bucket, error) {
	if len(name) == 0 {
		return nil, xerrors.New("bucket name required")
	}

	_, err := tx.txn.Exec("INSERT OR IGNORE INTO buckets(name) VALUES (?)", name)
	if err != nil {
		return nil, xerrors.Errorf("failed to create bucket: %v", err)
	}

	return &bucket{txn: tx.txn, name: append([]byte{}, name...)}, nil
}

// OnCommit implements store.Transaction.
func (tx *dbTx) OnCommit(fn func()) {
	tx.onCommit = append(tx.onCommit, fn)
}

// bucket is a bucket of the SQLite database.
//
// - implements kv.Bucket
type bucket struct {
	txn  *sql.Tx
	name []byte
}

// Get implements kv.Bucket. Errors are logged and reported as a missing key.
func (b *bucket) Get(key []byte) []byte {
	var value []byte

	err := b.txn.QueryRow(
		"SELECT value FROM entries WHERE bucket = ? AND key = ?", b.name, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil
	}

	if err != nil {
		matchgame.Logger.Warn().Err(err).Hex("key", key).Msg("failed to read entry")
		return nil
	}

	if value == nil {
		value = []byte{}
	}

	return value
}

// Set implements kv.Bucket.
func (b *bucket) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	_, err := b.txn.Exec(
		`INSERT INTO entries(bucket, key, value) VALUES (?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value`,
		b.name, key, value,
	)
	if err != nil {
		return xerrors.Errorf("failed to write entry: %v", err)
	}

	return nil
}

// Delete implements kv.Bucket.
func (b *bucket) Delete(key []byte) error {
	_, err := b.txn.Exec("DELETE FROM entries WHERE bucket = ? AND key = ?", b.name, key)
	if err != nil {
		return xerrors.Errorf("failed to delete entry: %v", err)
	}

	return nil
}

// ForEach implements kv.Bucket. Entries are visited in key order.
func (b *bucket) ForEach(fn func(k, v []byte) error) error {
	return b.Scan(nil, fn)
}

// Scan implements kv.Bucket. Entries with the given prefix are visited in key
// order.
func (b *bucket) Scan(prefix []byte, fn func(k, v []byte) error) error {
	rows, err := b.txn.Query(
		"SELECT key, value FROM entries WHERE bucket = ? ORDER BY key", b.name)
	if err != nil {
		return xerrors.Errorf("failed to query entries: %v", err)
	}

	type entry struct{ key, value []byte }

	var entries []entry

	for rows.Next() {
		var e entry

		err = rows.Scan(&e.key, &e.value)
		if err != nil {
			rows.Close()
			return xerrors.Errorf("failed to scan entry: %v", err)
		}

		if bytes.HasPrefix(e.key, prefix) {
			entries = append(entries, e)
		}
	}

	err = rows.Err()
	rows.Close()

	if err != nil {
		return xerrors.Errorf("failed to iterate entries: %v", err)
	}

	// The rows are closed before calling back so that the callback can use the
	// transaction.
	for _, e := range entries {
		err = fn(e.key, e.value)
		if err != nil {
			return xerrors.Errorf("callback failed: %v", err)
		}
	}

	return nil
}
