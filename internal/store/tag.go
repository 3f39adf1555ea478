package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pmemoapp/pmemo-server/internal/domain"
)

// loadTagInTxn fetches and unmarshals a tag inside an open transaction.
func loadTagInTxn(txn *badger.Txn, tagID string) (*domain.Tag, error) {
	item, err := txn.Get(tagKey(tagID))
	if err != nil {
		return nil, err
	}

	var tag domain.Tag
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tag)
	}); err != nil {
		return nil, err
	}
	return &tag, nil
}

// CreateTag persists a new tag. The normalized name must be unique
// among the owner's tags.
func (s *Store) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := domain.NormalizeTagName(tag.Name)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(tagNameIdxKey(tag.OwnerID, name))
		if err == nil {
			return ErrTagExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := setInTxn(txn, tagKey(tag.ID), tag); err != nil {
			return err
		}
		if err := txn.Set(tagOwnerIdxKey(tag.OwnerID, tag.ID), nil); err != nil {
			return err
		}
		return txn.Set(tagNameIdxKey(tag.OwnerID, name), []byte(tag.ID))
	})
}

// GetTag retrieves one of the owner's tags. A tag belonging to another
// owner is reported as not found.
func (s *Store) GetTag(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tag domain.Tag
	err := s.get(tagKey(tagID), &tag)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	if tag.OwnerID != ownerID {
		return nil, ErrTagNotFound
	}
	return &tag, nil
}

// ListTags returns all tags belonging to the owner, oldest first.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIDsByPrefix(tagOwnerIdxScanPrefix(ownerID))
	if err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(ids))
	for _, id := range ids {
		tag, err := s.GetTag(ctx, ownerID, id)
		if errors.Is(err, ErrTagNotFound) {
			continue // Index entry outlived the tag
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	slices.SortFunc(tags, func(a, b *domain.Tag) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return tags, nil
}

// UpdateTag applies mutate to one of the owner's tags within a single
// transaction, maintaining the name uniqueness index. UpdatedAt is set
// inside the transaction so it reflects the commit, not the request.
func (s *Store) UpdateTag(ctx context.Context, ownerID, tagID string, mutate func(*domain.Tag) error) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *domain.Tag
	err := s.db.Update(func(txn *badger.Txn) error {
		tag, err := loadTagInTxn(txn, tagID)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		if tag.OwnerID != ownerID {
			return ErrTagNotFound
		}

		oldName := domain.NormalizeTagName(tag.Name)

		if err := mutate(tag); err != nil {
			return err
		}
		tag.UpdatedAt = time.Now().UTC()

		newName := domain.NormalizeTagName(tag.Name)
		if newName != oldName {
			existing, err := txn.Get(tagNameIdxKey(ownerID, newName))
			if err == nil {
				var otherID string
				if verr := existing.Value(func(val []byte) error {
					otherID = string(val)
					return nil
				}); verr != nil {
					return verr
				}
				if otherID != tagID {
					return ErrTagExists
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := txn.Delete(tagNameIdxKey(ownerID, oldName)); err != nil {
				return err
			}
			if err := txn.Set(tagNameIdxKey(ownerID, newName), []byte(tagID)); err != nil {
				return err
			}
		}

		if err := setInTxn(txn, tagKey(tagID), tag); err != nil {
			return err
		}

		updated = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTag removes one of the owner's tags and strips the reference
// from every memo that carries it. The cascade happens in a single
// transaction: no memo is ever observed pointing at a deleted tag.
func (s *Store) DeleteTag(ctx context.Context, ownerID, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		tag, err := loadTagInTxn(txn, tagID)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		if tag.OwnerID != ownerID {
			return ErrTagNotFound
		}

		// Collect the memos referencing this tag before mutating,
		// since iterators do not observe writes made after creation.
		prefix := []byte(memoTagIdxScanPrefix(tagID))
		var memoIDs []string

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			memoIDs = append(memoIDs, key[len(prefix):])
		}
		it.Close()

		now := time.Now().UTC()
		for _, memoID := range memoIDs {
			memo, err := loadMemoInTxn(txn, memoID)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Stale index entry, just drop it.
				if err := txn.Delete(memoTagIdxKey(tagID, memoID)); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}

			memo.RemoveTag(tagID)
			memo.UpdatedAt = now
			if err := setInTxn(txn, memoKey(memoID), memo); err != nil {
				return err
			}
			if err := txn.Delete(memoTagIdxKey(tagID, memoID)); err != nil {
				return err
			}
		}

		if err := txn.Delete(tagNameIdxKey(ownerID, domain.NormalizeTagName(tag.Name))); err != nil {
			return err
		}
		if err := txn.Delete(tagOwnerIdxKey(ownerID, tagID)); err != nil {
			return err
		}
		return txn.Delete(tagKey(tagID))
	})
}
