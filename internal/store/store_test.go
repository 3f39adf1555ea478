package store

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmemoapp/pmemo-server/internal/domain"
	"github.com/pmemoapp/pmemo-server/internal/id"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(t.TempDir(), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func newTestUser(t *testing.T, email string) *domain.User {
	t.Helper()

	now := time.Now().UTC()
	return &domain.User{
		Timestamps:   domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		ID:           id.MustGenerate("user"),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		DisplayName:  "Test User",
	}
}

func newTestTag(t *testing.T, ownerID, name string) *domain.Tag {
	t.Helper()

	now := time.Now().UTC()
	return &domain.Tag{
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		ID:         id.MustGenerate("tag"),
		OwnerID:    ownerID,
		Name:       name,
		Color:      "#1abc9c",
	}
}

func newTestMemo(t *testing.T, ownerID, title string, tagIDs ...string) *domain.Memo {
	t.Helper()

	now := time.Now().UTC()
	return &domain.Memo{
		Timestamps: domain.Timestamps{CreatedAt: now, UpdatedAt: now},
		ID:         id.MustGenerate("memo"),
		OwnerID:    ownerID,
		Title:      title,
		Content:    "content of " + title,
		TagIDs:     tagIDs,
	}
}
