package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBadgerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns history newest first", func(t *testing.T) {
		r := require.New(t)

		s, err := NewMemoryStore()
		r.NoError(err)
		defer s.Close()

		base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

		for i, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			r.NoError(s.Record(ctx, Entry{
				Domain: "example.com",
				Target: ip,
				Kind:   "updated",
				At:     base.Add(time.Duration(i) * time.Second),
			}))
		}

		r.NoError(s.Record(ctx, Entry{Domain: "other.example", Target: "10.9.9.9", Kind: "inserted", At: base}))

		entries, err := s.History(ctx, "example.com", 0)
		r.NoError(err)
		r.Len(entries, 3)

		r.Equal("10.0.0.3", entries[0].Target)
		r.Equal("10.0.0.2", entries[1].Target)
		r.Equal("10.0.0.1", entries[2].Target)
		r.True(entries[0].At.Equal(base.Add(2 * time.Second)))

		entries, err = s.History(ctx, "example.com", 2)
		r.NoError(err)
		r.Len(entries, 2)
		r.Equal("10.0.0.3", entries[0].Target)
	})

	t.Run("keeps entries recorded at the same instant", func(t *testing.T) {
		r := require.New(t)

		s, err := NewMemoryStore()
		r.NoError(err)
		defer s.Close()

		at := time.Unix(1700000000, 0)
		r.NoError(s.Record(ctx, Entry{Domain: "example.com", Target: "10.0.0.1", At: at}))
		r.NoError(s.Record(ctx, Entry{Domain: "example.com", Target: "10.0.0.2", At: at}))

		entries, err := s.History(ctx, "example.com", 0)
		r.NoError(err)
		r.Len(entries, 2)
		r.Equal("10.0.0.2", entries[0].Target)
	})

	t.Run("does not mix domains sharing a prefix", func(t *testing.T) {
		r := require.New(t)

		s, err := NewMemoryStore()
		r.NoError(err)
		defer s.Close()

		r.NoError(s.Record(ctx, Entry{Domain: "example.com", Target: "10.0.0.1"}))
		r.NoError(s.Record(ctx, Entry{Domain: "example.com.evil", Target: "10.0.0.2"}))

		entries, err := s.History(ctx, "example.com", 0)
		r.NoError(err)
		r.Len(entries, 1)
		r.Equal("10.0.0.1", entries[0].Target)

		entries, err = s.History(ctx, "missing.example", 0)
		r.NoError(err)
		r.Empty(entries)
	})

	t.Run("persists on disk", func(t *testing.T) {
		r := require.New(t)

		dir := filepath.Join(t.TempDir(), "history")

		s, err := NewBadgerStore(dir)
		r.NoError(err)
		r.NoError(s.Record(ctx, Entry{Domain: "example.com", Target: "10.0.0.1", Kind: "inserted", Message: "domain example.com updated to 10.0.0.1"}))
		r.NoError(s.Close())

		s, err = NewBadgerStore(dir)
		r.NoError(err)
		defer s.Close()

		entries, err := s.History(ctx, "example.com", 0)
		r.NoError(err)
		r.Len(entries, 1)
		r.Equal("inserted", entries[0].Kind)
		r.False(entries[0].At.IsZero())
	})
}
