package store

import (
	"context"
	"os"
	"strings"
	"testing"
)

const testDatabaseURLEnvKey = "NEWSPOST_TEST_DATABASE_URL"

func testPGStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv(testDatabaseURLEnvKey))
	if dsn == "" {
		t.Skipf("%s not set", testDatabaseURLEnvKey)
	}
	ctx := context.Background()
	st, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if _, err := st.pool.Exec(ctx, "TRUNCATE posts RESTART IDENTITY"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPGStoreLifecycle(t *testing.T) {
	st := testPGStore(t)
	ctx := context.Background()

	posts, err := st.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", posts)
	}

	first, err := st.InsertPost(ctx, "first", strPtr("desc"), nil)
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	second, err := st.InsertPost(ctx, "second", nil, strPtr("/uploads/1.png"))
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}

	posts, err = st.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != second.ID {
		t.Fatalf("expected newest first, got %#v", posts)
	}

	got, err := st.GetPost(ctx, second.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Image == nil || *got.Image != "/uploads/1.png" {
		t.Fatalf("unexpected post: %#v", got)
	}

	deleted, err := st.DeletePost(ctx, first.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete true, got %v (%v)", deleted, err)
	}
	deleted, err = st.DeletePost(ctx, first.ID)
	if err != nil || deleted {
		t.Fatalf("expected delete false, got %v (%v)", deleted, err)
	}
}

func TestIsPostgresURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "postgres://u:p@localhost/db", want: true},
		{raw: "POSTGRESQL://localhost/db", want: true},
		{raw: "file:news.db", want: false},
		{raw: "", want: false},
	}
	for _, tt := range tests {
		if got := isPostgresURL(tt.raw); got != tt.want {
			t.Fatalf("isPostgresURL(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
