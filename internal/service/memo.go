package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pmemoapp/pmemo-server/internal/domain"
	domainerrors "github.com/pmemoapp/pmemo-server/internal/errors"
	"github.com/pmemoapp/pmemo-server/internal/id"
	"github.com/pmemoapp/pmemo-server/internal/search"
	"github.com/pmemoapp/pmemo-server/internal/store"
	"github.com/pmemoapp/pmemo-server/internal/validation"
)

// MemoService orchestrates memo operations and keeps the search index
// in step with the store. The store remains the source of truth; index
// writes are best effort and search falls back to a store scan.
type MemoService struct {
	store     *store.Store
	index     *search.Index
	validator *validation.Validator
	logger    *slog.Logger
}

// NewMemoService creates a new memo service.
func NewMemoService(st *store.Store, index *search.Index, validator *validation.Validator, logger *slog.Logger) *MemoService {
	return &MemoService{
		store:     st,
		index:     index,
		validator: validator,
		logger:    logger,
	}
}

// MemoWithTags is a memo with its tag references materialized for the
// client, which renders tag names and colors inline.
type MemoWithTags struct {
	*domain.Memo
	Tags []*domain.Tag `json:"tags"`
}

// CreateMemoRequest contains new memo data. Content may be empty.
type CreateMemoRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Content  string   `json:"content"`
	IsPublic bool     `json:"is_public"`
	TagIDs   []string `json:"tags"`
}

// UpdateMemoRequest contains partial memo updates. Nil fields are left
// unchanged; a non-nil empty Content or TagIDs clears that field.
type UpdateMemoRequest struct {
	Title    *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string   `json:"content"`
	IsPublic *bool     `json:"is_public"`
	TagIDs   *[]string `json:"tags"`
}

// Create makes a new memo for the owner. Every tag reference must point
// at one of the owner's tags.
func (s *MemoService) Create(ctx context.Context, ownerID string, req CreateMemoRequest) (*MemoWithTags, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	memoID, err := id.Generate("memo")
	if err != nil {
		return nil, fmt.Errorf("generate memo ID: %w", err)
	}

	memo := &domain.Memo{
		ID:       memoID,
		OwnerID:  ownerID,
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		TagIDs:   dedupeTagIDs(req.TagIDs),
	}
	memo.InitTimestamps()

	if err := s.store.CreateMemo(ctx, memo); err != nil {
		return nil, s.memoStoreError(err)
	}

	s.reindex(memo)
	s.logger.Info("memo created", "memo_id", memo.ID, "user_id", ownerID)
	return s.withTags(ctx, memo)
}

// Get returns a memo readable by the requester: their own, or anyone's
// public memo. A private memo of another user reads as missing.
func (s *MemoService) Get(ctx context.Context, requesterID, memoID string) (*MemoWithTags, error) {
	memo, err := s.store.GetMemo(ctx, memoID)
	if err != nil {
		return nil, s.memoStoreError(err)
	}
	if !memo.CanRead(requesterID) {
		return nil, domainerrors.NotFound("memo not found")
	}
	return s.withTags(ctx, memo)
}

// Update applies a partial update to one of the owner's memos.
func (s *MemoService) Update(ctx context.Context, ownerID, memoID string, req UpdateMemoRequest) (*MemoWithTags, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	memo, err := s.store.UpdateMemo(ctx, ownerID, memoID, func(m *domain.Memo) error {
		if req.Title != nil {
			m.Title = *req.Title
		}
		if req.Content != nil {
			m.Content = *req.Content
		}
		if req.IsPublic != nil {
			m.IsPublic = *req.IsPublic
		}
		if req.TagIDs != nil {
			m.TagIDs = dedupeTagIDs(*req.TagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, s.memoStoreError(err)
	}

	s.reindex(memo)
	return s.withTags(ctx, memo)
}

// Delete removes one of the owner's memos.
func (s *MemoService) Delete(ctx context.Context, ownerID, memoID string) error {
	if err := s.store.DeleteMemo(ctx, ownerID, memoID); err != nil {
		return s.memoStoreError(err)
	}

	if err := s.index.DeleteMemo(memoID); err != nil {
		s.logger.Warn("failed to remove memo from search index", "memo_id", memoID, "error", err)
	}

	s.logger.Info("memo deleted", "memo_id", memoID, "user_id", ownerID)
	return nil
}

// List returns all of the owner's memos, most recently updated first.
func (s *MemoService) List(ctx context.Context, ownerID string) ([]*MemoWithTags, error) {
	memos, err := s.store.ListMemos(ctx, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return s.allWithTags(ctx, ownerID, memos)
}

// ListByTag returns the owner's memos carrying the given tag, most
// recently updated first.
func (s *MemoService) ListByTag(ctx context.Context, ownerID, tagID string) ([]*MemoWithTags, error) {
	if _, err := s.store.GetTag(ctx, ownerID, tagID); err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, storeFailure(err)
	}

	memos, err := s.store.ListMemosByTag(ctx, ownerID, tagID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return s.allWithTags(ctx, ownerID, memos)
}

// Search returns the owner's memos whose title or content contains the
// query, case-insensitively, most recently updated first. A blank query
// lists everything. If the index cannot answer, the store is scanned
// instead so search degrades rather than fails.
func (s *MemoService) Search(ctx context.Context, ownerID, query string) ([]*MemoWithTags, error) {
	if strings.TrimSpace(query) == "" {
		return s.List(ctx, ownerID)
	}

	ids, err := s.index.Search(ownerID, query)
	if err != nil {
		s.logger.Warn("search index query failed, falling back to store scan", "error", err)
		memos, scanErr := s.store.ScanMemos(ctx, ownerID, query)
		if scanErr != nil {
			return nil, storeFailure(scanErr)
		}
		return s.allWithTags(ctx, ownerID, memos)
	}

	// Re-rank index hits into store recency order.
	memos, err := s.store.ListMemos(ctx, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}

	hits := make(map[string]struct{}, len(ids))
	for _, memoID := range ids {
		hits[memoID] = struct{}{}
	}

	matched := memos[:0]
	for _, memo := range memos {
		if _, ok := hits[memo.ID]; ok {
			matched = append(matched, memo)
		}
	}
	return s.allWithTags(ctx, ownerID, matched)
}

// memoStoreError translates memo store sentinels into domain errors.
func (s *MemoService) memoStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrMemoNotFound):
		return domainerrors.NotFound("memo not found")
	case errors.Is(err, store.ErrInvalidTagReference):
		return domainerrors.Validation("referenced tag does not exist")
	default:
		return storeFailure(err)
	}
}

// reindex updates the search document for a memo, best effort.
func (s *MemoService) reindex(memo *domain.Memo) {
	if err := s.index.IndexMemo(memo); err != nil {
		s.logger.Warn("failed to index memo", "memo_id", memo.ID, "error", err)
	}
}

// withTags materializes one memo's tag references.
func (s *MemoService) withTags(ctx context.Context, memo *domain.Memo) (*MemoWithTags, error) {
	out, err := s.allWithTags(ctx, memo.OwnerID, []*domain.Memo{memo})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// allWithTags materializes tag references for a batch of memos with a
// single tag listing per owner.
func (s *MemoService) allWithTags(ctx context.Context, ownerID string, memos []*domain.Memo) ([]*MemoWithTags, error) {
	tags, err := s.store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}

	byID := make(map[string]*domain.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}

	out := make([]*MemoWithTags, 0, len(memos))
	for _, memo := range memos {
		materialized := make([]*domain.Tag, 0, len(memo.TagIDs))
		for _, tagID := range memo.TagIDs {
			if tag, ok := byID[tagID]; ok {
				materialized = append(materialized, tag)
			}
		}
		out = append(out, &MemoWithTags{Memo: memo, Tags: materialized})
	}
	return out, nil
}

// dedupeTagIDs removes duplicate references while preserving the order
// the client sent.
func dedupeTagIDs(tagIDs []string) []string {
	if len(tagIDs) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tagIDs))
	out := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		out = append(out, tagID)
	}
	return slices.Clip(out)
}
