package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/liuwen/deepchat/internal/model/chat"
)

var rootBucket = []byte("conversations")

// BoltStore persists conversations in a single BoltDB file. Each owner gets
// a nested bucket keyed by conversation id; values are JSON-encoded records.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, errCreate := tx.CreateBucketIfNotExists(rootBucket)
		return errCreate
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store %s: %w", path, err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Create writes a new conversation record.
func (s *BoltStore) Create(_ context.Context, conv chat.Conversation) error {
	return s.put(conv)
}

// FindOne retrieves a conversation by (owner, id).
func (s *BoltStore) FindOne(_ context.Context, owner, id string) (chat.Conversation, error) {
	var conv chat.Conversation
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		owned := tx.Bucket(rootBucket).Bucket([]byte(owner))
		if owned == nil {
			return nil
		}
		raw := owned.Get([]byte(id))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &conv); err != nil {
			return fmt.Errorf("decode conversation %s: %w", id, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return chat.Conversation{}, err
	}
	if !found {
		return chat.Conversation{}, ErrNotFound
	}
	return conv, nil
}

// ListByOwner returns the owner's conversations, most recently updated first.
func (s *BoltStore) ListByOwner(_ context.Context, owner string) ([]chat.Conversation, error) {
	out := make([]chat.Conversation, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		owned := tx.Bucket(rootBucket).Bucket([]byte(owner))
		if owned == nil {
			return nil
		}
		return owned.ForEach(func(_, raw []byte) error {
			var conv chat.Conversation
			if err := json.Unmarshal(raw, &conv); err != nil {
				// Skip malformed entries instead of failing the whole list.
				return nil
			}
			out = append(out, conv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Save overwrites an existing conversation with the supplied snapshot.
func (s *BoltStore) Save(_ context.Context, conv chat.Conversation) error {
	exists := false
	err := s.db.View(func(tx *bolt.Tx) error {
		owned := tx.Bucket(rootBucket).Bucket([]byte(conv.Owner))
		if owned != nil && owned.Get([]byte(conv.ID)) != nil {
			exists = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.put(conv)
}

// Delete removes a conversation record.
func (s *BoltStore) Delete(_ context.Context, owner, id string) error {
	missing := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		owned := tx.Bucket(rootBucket).Bucket([]byte(owner))
		if owned == nil || owned.Get([]byte(id)) == nil {
			missing = true
			return nil
		}
		return owned.Delete([]byte(id))
	})
	if err != nil {
		return err
	}
	if missing {
		return ErrNotFound
	}
	return nil
}

func (s *BoltStore) put(conv chat.Conversation) error {
	raw, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", conv.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		owned, errBucket := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(conv.Owner))
		if errBucket != nil {
			return errBucket
		}
		return owned.Put([]byte(conv.ID), raw)
	})
}
