package database

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// sequenceBandwidth is how many ids a badger sequence leases at a time.
// Leased ids that are not handed out before a restart are skipped.
const sequenceBandwidth = 100

// BadgerStore implements the Store interface on an embedded Badger database.
//
// Keys are "<kind>/" followed by the big-endian id so that prefix iteration
// yields documents in id order.
type BadgerStore struct {
	db *badger.DB

	mu   sync.Mutex
	seqs map[Kind]*badger.Sequence
}

// OpenBadger opens a Badger database at path. An empty path runs in memory.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &BadgerStore{db: db, seqs: make(map[Kind]*badger.Sequence)}, nil
}

// Close releases sequences and closes the database
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, seq := range b.seqs {
		if err := seq.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	b.seqs = nil
	if err := b.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Ping reports whether the database is open
func (b *BadgerStore) Ping(ctx context.Context) error {
	if b.db.IsClosed() {
		return ErrConnection
	}
	return nil
}

// Get fetches a single document
func (b *BadgerStore) Get(ctx context.Context, kind Kind, id int64) (*Record, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	var rec *Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(kind, id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec = &Record{ID: id, Data: append([]byte(nil), val...)}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return rec, nil
}

// Put upserts a document, allocating an id when rec.ID is zero
func (b *BadgerStore) Put(ctx context.Context, kind Kind, rec *Record) (int64, error) {
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}
	id := rec.ID
	if id == 0 {
		next, err := b.nextID(kind)
		if err != nil {
			return 0, err
		}
		id = next
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(kind, id), rec.Data)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return id, nil
}

// Delete removes a document
func (b *BadgerStore) Delete(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	key := badgerKey(kind, id)
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

// Scan iterates the kind's key prefix in id order
func (b *BadgerStore) Scan(ctx context.Context, kind Kind, limit, offset int) (*Page, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if offset < 0 {
		offset = 0
	}

	page := &Page{Records: []Record{}}
	prefix := badgerPrefix(kind)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		skipped := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(page.Records) == limit {
				page.HasMore = true
				break
			}

			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			id := int64(binary.BigEndian.Uint64(item.Key()[len(prefix):]))
			page.Records = append(page.Records, Record{ID: id, Data: val})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	page.NextOffset = offset + len(page.Records)
	return page, nil
}

func (b *BadgerStore) nextID(kind Kind) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seq, ok := b.seqs[kind]
	if !ok {
		var err error
		seq, err = b.db.GetSequence([]byte("sequence/"+string(kind)), sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		b.seqs[kind] = seq
	}

	n, err := seq.Next()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	// Sequences start at zero; zero is reserved for "allocate".
	return int64(n) + 1, nil
}

func badgerPrefix(kind Kind) []byte {
	return []byte(string(kind) + "/")
}

func badgerKey(kind Kind, id int64) []byte {
	prefix := badgerPrefix(kind)
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], uint64(id))
	return key
}
