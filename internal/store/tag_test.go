package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmemoapp/pmemo-server/internal/domain"
)

func TestCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := newTestUser(t, "alice@example.com")
	require.NoError(t, s.CreateUser(ctx, owner))

	tag := newTestTag(t, owner.ID, "work")
	require.NoError(t, s.CreateTag(ctx, tag))

	got, err := s.GetTag(ctx, owner.ID, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "work", got.Name)
	assert.Equal(t, "#1abc9c", got.Color)
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ownerID := "user-owner"
	require.NoError(t, s.CreateTag(ctx, newTestTag(t, ownerID, "work")))

	// Duplicate detection is on the normalized name.
	err := s.CreateTag(ctx, newTestTag(t, ownerID, "  Work "))
	assert.ErrorIs(t, err, ErrTagExists)

	// Another owner can use the same name.
	require.NoError(t, s.CreateTag(ctx, newTestTag(t, "user-other", "work")))
}

func TestGetTag_OwnerScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := newTestTag(t, "user-owner", "private")
	require.NoError(t, s.CreateTag(ctx, tag))

	// Other owners see the tag as missing, not forbidden.
	_, err := s.GetTag(ctx, "user-other", tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestListTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ownerID := "user-owner"
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, s.CreateTag(ctx, newTestTag(t, ownerID, name)))
	}
	require.NoError(t, s.CreateTag(ctx, newTestTag(t, "user-other", "delta")))

	tags, err := s.ListTags(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	for _, tag := range tags {
		assert.Equal(t, ownerID, tag.OwnerID)
	}
}

func TestUpdateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ownerID := "user-owner"
	tag := newTestTag(t, ownerID, "work")
	require.NoError(t, s.CreateTag(ctx, tag))

	updated, err := s.UpdateTag(ctx, ownerID, tag.ID, func(tg *domain.Tag) error {
		tg.Name = "projects"
		tg.Color = "#e74c3c"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "projects", updated.Name)
	assert.Equal(t, "#e74c3c", updated.Color)
	assert.True(t, updated.UpdatedAt.After(tag.CreatedAt) || updated.UpdatedAt.Equal(tag.CreatedAt))

	// The old name becomes available again.
	require.NoError(t, s.CreateTag(ctx, newTestTag(t, ownerID, "work")))

	// Renaming onto an existing name is rejected.
	_, err = s.UpdateTag(ctx, ownerID, tag.ID, func(tg *domain.Tag) error {
		tg.Name = "Work"
		return nil
	})
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestUpdateTag_NotOwned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := newTestTag(t, "user-owner", "work")
	require.NoError(t, s.CreateTag(ctx, tag))

	_, err := s.UpdateTag(ctx, "user-other", tag.ID, func(tg *domain.Tag) error {
		tg.Name = "stolen"
		return nil
	})
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestDeleteTag_CascadesToMemos(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ownerID := "user-owner"
	keep := newTestTag(t, ownerID, "keep")
	gone := newTestTag(t, ownerID, "gone")
	require.NoError(t, s.CreateTag(ctx, keep))
	require.NoError(t, s.CreateTag(ctx, gone))

	memo := newTestMemo(t, ownerID, "tagged", keep.ID, gone.ID)
	require.NoError(t, s.CreateMemo(ctx, memo))

	require.NoError(t, s.DeleteTag(ctx, ownerID, gone.ID))

	_, err := s.GetTag(ctx, ownerID, gone.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)

	got, err := s.GetMemo(ctx, memo.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, got.TagIDs)

	// The freed name is usable again.
	require.NoError(t, s.CreateTag(ctx, newTestTag(t, ownerID, "gone")))
}

func TestDeleteTag_NotOwned(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := newTestTag(t, "user-owner", "work")
	require.NoError(t, s.CreateTag(ctx, tag))

	err := s.DeleteTag(ctx, "user-other", tag.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
}
