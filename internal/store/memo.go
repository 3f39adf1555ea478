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

// loadMemoInTxn fetches and unmarshals a memo inside an open transaction.
func loadMemoInTxn(txn *badger.Txn, memoID string) (*domain.Memo, error) {
	item, err := txn.Get(memoKey(memoID))
	if err != nil {
		return nil, err
	}

	var memo domain.Memo
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &memo)
	}); err != nil {
		return nil, err
	}
	return &memo, nil
}

// validateTagRefsInTxn checks that every referenced tag exists and
// belongs to the owner.
func validateTagRefsInTxn(txn *badger.Txn, ownerID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		tag, err := loadTagInTxn(txn, tagID)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrInvalidTagReference
		}
		if err != nil {
			return err
		}
		if tag.OwnerID != ownerID {
			return ErrInvalidTagReference
		}
	}
	return nil
}

// CreateMemo persists a new memo. Tag references are validated in the
// same transaction that writes the memo.
func (s *Store) CreateMemo(ctx context.Context, memo *domain.Memo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := validateTagRefsInTxn(txn, memo.OwnerID, memo.TagIDs); err != nil {
			return err
		}

		if err := setInTxn(txn, memoKey(memo.ID), memo); err != nil {
			return err
		}
		if err := txn.Set(memoOwnerIdxKey(memo.OwnerID, memo.ID), nil); err != nil {
			return err
		}
		for _, tagID := range memo.TagIDs {
			if err := txn.Set(memoTagIdxKey(tagID, memo.ID), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMemo retrieves a memo by ID regardless of owner. Visibility rules
// (owner or public) are the service layer's concern.
func (s *Store) GetMemo(ctx context.Context, memoID string) (*domain.Memo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var memo domain.Memo
	err := s.get(memoKey(memoID), &memo)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMemoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &memo, nil
}

// UpdateMemo applies mutate to one of the owner's memos within a single
// transaction. Tag references resulting from the mutation are validated
// and the tag index is kept in sync. UpdatedAt reflects the commit time.
func (s *Store) UpdateMemo(ctx context.Context, ownerID, memoID string, mutate func(*domain.Memo) error) (*domain.Memo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *domain.Memo
	err := s.db.Update(func(txn *badger.Txn) error {
		memo, err := loadMemoInTxn(txn, memoID)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMemoNotFound
		}
		if err != nil {
			return err
		}
		if memo.OwnerID != ownerID {
			return ErrMemoNotFound
		}

		oldTagIDs := slices.Clone(memo.TagIDs)

		if err := mutate(memo); err != nil {
			return err
		}
		memo.UpdatedAt = time.Now().UTC()

		if err := validateTagRefsInTxn(txn, ownerID, memo.TagIDs); err != nil {
			return err
		}

		for _, tagID := range oldTagIDs {
			if !slices.Contains(memo.TagIDs, tagID) {
				if err := txn.Delete(memoTagIdxKey(tagID, memoID)); err != nil {
					return err
				}
			}
		}
		for _, tagID := range memo.TagIDs {
			if !slices.Contains(oldTagIDs, tagID) {
				if err := txn.Set(memoTagIdxKey(tagID, memoID), nil); err != nil {
					return err
				}
			}
		}

		if err := setInTxn(txn, memoKey(memoID), memo); err != nil {
			return err
		}

		updated = memo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteMemo removes one of the owner's memos together with its index
// entries.
func (s *Store) DeleteMemo(ctx context.Context, ownerID, memoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		memo, err := loadMemoInTxn(txn, memoID)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrMemoNotFound
		}
		if err != nil {
			return err
		}
		if memo.OwnerID != ownerID {
			return ErrMemoNotFound
		}

		for _, tagID := range memo.TagIDs {
			if err := txn.Delete(memoTagIdxKey(tagID, memoID)); err != nil {
				return err
			}
		}
		if err := txn.Delete(memoOwnerIdxKey(ownerID, memoID)); err != nil {
			return err
		}
		return txn.Delete(memoKey(memoID))
	})
}

// ListMemos returns all memos belonging to the owner, most recently
// updated first.
func (s *Store) ListMemos(ctx context.Context, ownerID string) ([]*domain.Memo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIDsByPrefix(memoOwnerIdxScanPrefix(ownerID))
	if err != nil {
		return nil, err
	}

	memos := make([]*domain.Memo, 0, len(ids))
	for _, id := range ids {
		memo, err := s.GetMemo(ctx, id)
		if errors.Is(err, ErrMemoNotFound) {
			continue // Index entry outlived the memo
		}
		if err != nil {
			return nil, err
		}
		memos = append(memos, memo)
	}

	sortMemosByRecency(memos)
	return memos, nil
}

// ListMemosByTag returns the owner's memos that reference the tag,
// most recently updated first.
func (s *Store) ListMemosByTag(ctx context.Context, ownerID, tagID string) ([]*domain.Memo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := s.collectIDsByPrefix(memoTagIdxScanPrefix(tagID))
	if err != nil {
		return nil, err
	}

	memos := make([]*domain.Memo, 0, len(ids))
	for _, id := range ids {
		memo, err := s.GetMemo(ctx, id)
		if errors.Is(err, ErrMemoNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if memo.OwnerID != ownerID {
			continue
		}
		memos = append(memos, memo)
	}

	sortMemosByRecency(memos)
	return memos, nil
}

// ScanMemos returns the owner's memos whose title or content contains
// the query, case-insensitively. It is the fallback path when the
// search index is unavailable; an empty query matches everything.
func (s *Store) ScanMemos(ctx context.Context, ownerID, query string) ([]*domain.Memo, error) {
	memos, err := s.ListMemos(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return memos, nil
	}

	matched := memos[:0]
	for _, memo := range memos {
		if strings.Contains(strings.ToLower(memo.Title), query) ||
			strings.Contains(strings.ToLower(memo.Content), query) {
			matched = append(matched, memo)
		}
	}
	return matched, nil
}

// sortMemosByRecency orders memos newest first by their last update,
// falling back to ID for a stable order on ties.
func sortMemosByRecency(memos []*domain.Memo) {
	slices.SortFunc(memos, func(a, b *domain.Memo) int {
		if c := b.Recency().Compare(a.Recency()); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}
