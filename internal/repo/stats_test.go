package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-social-posts/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestPostsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, _, err := PostsStats(context.Background(), db, "u1"); err == nil {
		t.Fatalf("expected error due to missing posts table")
	}
}

func TestPostsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Post{})
	count, maxID, err := PostsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PostsStats error: %v", err)
	}
	if count != 0 || maxID != 0 {
		t.Fatalf("expected (0, 0), got (%d, %d)", count, maxID)
	}
}

func TestPostsStats_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Post{})
	u1, u2 := "u1", "u2"

	seed := []domain.Post{
		{UserID: &u1, Content: "a", Tone: "t"},
		{UserID: &u2, Content: "b", Tone: "t"},
		{UserID: &u1, Content: "c", Tone: "t"},
		{Content: "d", Tone: "t"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	count, maxID, err := PostsStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PostsStats(u1): %v", err)
	}
	if count != 2 || maxID != seed[2].ID {
		t.Fatalf("u1: expected (2, %d), got (%d, %d)", seed[2].ID, count, maxID)
	}

	count, maxID, err = PostsStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("PostsStats(all): %v", err)
	}
	if count != 4 || maxID != seed[3].ID {
		t.Fatalf("all: expected (4, %d), got (%d, %d)", seed[3].ID, count, maxID)
	}
}
