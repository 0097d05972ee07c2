// Package repo implements the data persistence layer for posts, backed by
// GORM. This file provides the small aggregate query used for conditional
// list responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-social-posts/internal/domain"
)

// PostsStats returns the number of posts and the greatest id among them,
// scoped to userID when it is non-empty. Posts are never updated or deleted,
// so (count, maxID) changes exactly when a matching post is created.
func PostsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxID uint, err error) {
	scoped := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&domain.Post{})
		if userID != "" {
			q = q.Where("user_id = ?", userID)
		}
		return q
	}
	if err = scoped().Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct{ ID uint }
	if err = scoped().Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
