package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"casebot/internal/domain"
)

func TestGetAbsent(t *testing.T) {
	s := New()
	_, ok := s.Get(1)
	require.False(t, ok)
}

func TestCreateSeedsAnswers(t *testing.T) {
	s := New()
	sess := s.Create(42, "alice")

	require.Equal(t, int64(42), sess.Identity)
	require.Equal(t, "alice", sess.DisplayName)
	require.Equal(t, 0, sess.Cursor)
	require.Equal(t, map[string]string{
		domain.SeedKeyIdentity:    "42",
		domain.SeedKeyDisplayName: "alice",
	}, sess.Answers)

	got, ok := s.Get(42)
	require.True(t, ok)
	require.Same(t, sess, got)
}

func TestCreateOverwritesUnconditionally(t *testing.T) {
	s := New()
	first := s.Create(42, "alice")
	first.Cursor = 3
	first.Answers["name"] = "Alice"

	second := s.Create(42, "alice")
	require.NotSame(t, first, second)
	require.Equal(t, 0, second.Cursor)
	require.NotContains(t, second.Answers, "name")
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New()
	s.Delete(42) // absent, no-op

	s.Create(42, "alice")
	s.Delete(42)
	_, ok := s.Get(42)
	require.False(t, ok)

	s.Delete(42)
}

func TestStoresAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.Create(1, "alice")

	_, ok := b.Get(1)
	require.False(t, ok)
}
