package storage

import (
	"context"
	"encoding/binary"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Entry is one journaled update of the hosts table.
type Entry struct {
	Domain   string    `cbor:"1,keyasint" json:"domain"`
	Target   string    `cbor:"2,keyasint" json:"target"`
	Previous string    `cbor:"3,keyasint,omitempty" json:"previous,omitempty"`
	Kind     string    `cbor:"4,keyasint" json:"kind"`
	Message  string    `cbor:"5,keyasint" json:"message"`
	At       time.Time `cbor:"6,keyasint" json:"at"`
}

var entryEnc = mustEncMode(cbor.EncOptions{Time: cbor.TimeRFC3339Nano})

// Journal defines the interface for the update history
type Journal interface {
	Record(ctx context.Context, e Entry) error
	History(ctx context.Context, domain string, limit int) ([]Entry, error)
	Close() error
}

// BadgerStore is a BadgerDB implementation of the Journal interface
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a new BadgerStore
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	return openBadger(opts)
}

// NewMemoryStore creates a BadgerStore that keeps everything in memory.
func NewMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening history store")
	}

	return &BadgerStore{db: db}, nil
}

// Record stores e under its domain, keyed by time
func (s *BadgerStore) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.At.IsZero() {
		e.At = time.Now()
	}

	data, err := entryEnc.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding history entry")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := entryKey(e.Domain, e.At)

		// Two updates in the same nanosecond must not overwrite each other.
		for {
			_, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				break
			}
			if err != nil {
				return err
			}
			key = bumpKey(key)
		}

		return txn.Set(key, data)
	})
}

// History returns the newest entries for domain first. A limit <= 0 returns
// all of them.
func (s *BadgerStore) History(ctx context.Context, domain string, limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := domainPrefix(domain)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks to the last key <= the seek key.
		seek := append(append([]byte{}, prefix...), 0xff)

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var e Entry
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &e)
			})
			if err != nil {
				return errors.Wrap(err, "decoding history entry")
			}

			entries = append(entries, e)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}

		return nil
	})

	return entries, err
}

// Close closes the BadgerDB
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func domainPrefix(domain string) []byte {
	return []byte("history/" + domain + "\x00")
}

// entryKey is the domain prefix followed by the big-endian timestamp and a
// sequence number, so keys for a domain sort by time.
func entryKey(domain string, at time.Time) []byte {
	prefix := domainPrefix(domain)
	key := make([]byte, len(prefix)+12)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(at.UnixNano()))
	return key
}

func bumpKey(key []byte) []byte {
	seq := key[len(key)-4:]
	binary.BigEndian.PutUint32(seq, binary.BigEndian.Uint32(seq)+1)
	return key
}
