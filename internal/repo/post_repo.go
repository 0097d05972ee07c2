// Package repo implements the data persistence layer for posts, backed by
// GORM. This file provides the Post repository functions.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the thin-repository approach: invariant checks on the stored shape and
// query composition, no generation or HTTP concerns. Posts are append-only:
// there is no update or delete.
//
// Ordering:
//   - ListPostsByUser returns newest first (id DESC).
//   - ListPosts returns insertion order (id ASC).
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-social-posts/internal/domain"
)

// ErrInvalidPost is returned when the fields of a new post violate the
// stored-record invariants.
var ErrInvalidPost = errors.New("invalid post")

// CreatePost validates in, assigns identity and timestamp, and inserts the row
// inside a transaction so the record is either fully visible or absent.
func CreatePost(ctx context.Context, db *gorm.DB, in domain.NewPost) (*domain.Post, error) {
	if err := validateNewPost(in); err != nil {
		return nil, err
	}
	p := &domain.Post{
		UserID:           in.UserID,
		Content:          in.Content,
		Tone:             in.Tone,
		InstagramVersion: in.InstagramVersion,
		TwitterVersion:   in.TwitterVersion,
		ImagePrompt:      in.ImagePrompt,
		ImageSeed:        in.ImageSeed,
		IsUpload:         in.IsUpload,
		ImageData:        in.ImageData,
		CreatedAt:        time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPostsByUser returns posts whose user_id equals userID exactly, newest
// first. A limit <= 0 returns every match.
func ListPostsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Post, error) {
	out := []domain.Post{}
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ListPosts returns every post in insertion order. A limit <= 0 returns all.
func ListPosts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error) {
	out := []domain.Post{}
	q := db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// validateNewPost enforces the stored-record invariants:
// content and tone are non-empty; an upload carries image data and the zero
// seed; a text post carries no image data.
func validateNewPost(in domain.NewPost) error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is empty", ErrInvalidPost)
	}
	if strings.TrimSpace(in.Tone) == "" {
		return fmt.Errorf("%w: tone is empty", ErrInvalidPost)
	}
	if in.IsUpload {
		if in.ImageData == nil || *in.ImageData == "" {
			return fmt.Errorf("%w: upload without image data", ErrInvalidPost)
		}
		if in.ImageSeed != domain.ImageSeedSentinel {
			return fmt.Errorf("%w: upload seed must be %d", ErrInvalidPost, domain.ImageSeedSentinel)
		}
	} else if in.ImageData != nil {
		return fmt.Errorf("%w: text post with image data", ErrInvalidPost)
	}
	return nil
}
