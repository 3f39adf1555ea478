package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pmemoapp/pmemo-server/internal/color"
	"github.com/pmemoapp/pmemo-server/internal/domain"
	domainerrors "github.com/pmemoapp/pmemo-server/internal/errors"
	"github.com/pmemoapp/pmemo-server/internal/id"
	"github.com/pmemoapp/pmemo-server/internal/store"
	"github.com/pmemoapp/pmemo-server/internal/validation"
)

// TagService orchestrates tag operations. All operations are scoped to
// the requesting owner; another user's tag is indistinguishable from a
// missing one.
type TagService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st *store.Store, validator *validation.Validator, logger *slog.Logger) *TagService {
	return &TagService{
		store:     st,
		validator: validator,
		logger:    logger,
	}
}

// CreateTagRequest contains new tag data. Color is optional; a stable
// palette color is derived from the name when omitted.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,tagcolor"`
}

// UpdateTagRequest contains partial tag updates. Nil fields are left
// unchanged.
type UpdateTagRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=50"`
	Color *string `json:"color" validate:"omitempty,tagcolor"`
}

// Create makes a new tag for the owner.
func (s *TagService) Create(ctx context.Context, ownerID string, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tagColor := req.Color
	if tagColor == "" {
		tagColor = color.ForTag(req.Name)
	}

	tag := &domain.Tag{
		ID:      tagID,
		OwnerID: ownerID,
		Name:    req.Name,
		Color:   tagColor,
	}
	tag.InitTimestamps()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrTagExists) {
			return nil, domainerrors.AlreadyExists("tag name already in use")
		}
		return nil, storeFailure(err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "user_id", ownerID)
	return tag, nil
}

// Get returns one of the owner's tags.
func (s *TagService) Get(ctx context.Context, ownerID, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, ownerID, tagID)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, storeFailure(err)
	}
	return tag, nil
}

// List returns all of the owner's tags.
func (s *TagService) List(ctx context.Context, ownerID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return tags, nil
}

// Update applies a partial update to one of the owner's tags.
func (s *TagService) Update(ctx context.Context, ownerID, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.store.UpdateTag(ctx, ownerID, tagID, func(t *domain.Tag) error {
		if req.Name != nil {
			t.Name = *req.Name
		}
		if req.Color != nil {
			t.Color = *req.Color
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTagNotFound):
			return nil, domainerrors.NotFound("tag not found")
		case errors.Is(err, store.ErrTagExists):
			return nil, domainerrors.AlreadyExists("tag name already in use")
		default:
			return nil, storeFailure(err)
		}
	}

	return tag, nil
}

// Delete removes one of the owner's tags. Every memo referencing it is
// updated in the same storage transaction, so no memo is ever seen
// pointing at a deleted tag.
func (s *TagService) Delete(ctx context.Context, ownerID, tagID string) error {
	if err := s.store.DeleteTag(ctx, ownerID, tagID); err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return storeFailure(err)
	}

	s.logger.Info("tag deleted", "tag_id", tagID, "user_id", ownerID)
	return nil
}
