// Package tokenstore persists the auth token across process restarts using
// a small bbolt database. It is a plain string key-value store; the session
// service decides what keys to keep in it.
package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketAuth = []byte("auth")

// Store is a bbolt-backed key-value store for credentials.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the store at the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create token store dir: %w", err)
	}

	path := filepath.Join(dir, "credentials.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAuth)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create auth bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Load returns the value for key and whether it was present.
func (s *Store) Load(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketAuth).Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("load %q: %w", key, err)
	}
	return value, found, nil
}

// Save writes the value for key.
func (s *Store) Save(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Clear removes key. Clearing an absent key is not an error.
func (s *Store) Clear(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAuth).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("clear %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
