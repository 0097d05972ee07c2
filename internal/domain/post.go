// Package domain defines the persistence model for generated social posts.
// The Post type is mapped with GORM and shared by the repository, service,
// and HTTP layers.
package domain

import "time"

// Sentinels recorded for posts generated from an uploaded image instead of text.
const (
	ImageContentSentinel = "[Image Upload]"
	ImagePromptSentinel  = "[Uploaded Image]"
	ImageSeedSentinel    = 0
)

// Post pairs an input (text description or uploaded image) with the
// generated Instagram caption and Twitter/X post.
//
// Fields:
//   - ID: auto-increment primary key, assigned at insert, never reused.
//   - UserID: optional owner; exact-match filter for listing.
//   - Content: original text, or ImageContentSentinel for uploads.
//   - Tone: style label the copy was generated in.
//   - InstagramVersion / TwitterVersion: generated copy ("" when the model omitted a field).
//   - ImagePrompt: echo of Content, or ImagePromptSentinel for uploads.
//   - ImageSeed: cosmetic random value for text posts, 0 for uploads.
//   - IsUpload: true when the post was derived from an image.
//   - ImageData: base64 JPEG of the resized upload; nil for text posts.
//   - CreatedAt: insert timestamp.
type Post struct {
	ID               uint      `json:"id"                gorm:"primaryKey;autoIncrement"`
	UserID           *string   `json:"user_id"           gorm:"type:varchar(128);index:idx_posts_user"`
	Content          string    `json:"content"           gorm:"type:text;not null;index"`
	Tone             string    `json:"tone"              gorm:"type:varchar(64);not null"`
	InstagramVersion string    `json:"instagram_version" gorm:"type:text;not null;default:''"`
	TwitterVersion   string    `json:"twitter_version"   gorm:"type:text;not null;default:''"`
	ImagePrompt      string    `json:"image_prompt"      gorm:"type:text;not null;default:''"`
	ImageSeed        int       `json:"image_seed"        gorm:"not null;default:0"`
	IsUpload         bool      `json:"is_upload"         gorm:"not null;default:false"`
	ImageData        *string   `json:"image_data"        gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// NewPost carries the fields of a post about to be created. Identity and
// timestamps are assigned by the repository.
type NewPost struct {
	UserID           *string
	Content          string
	Tone             string
	InstagramVersion string
	TwitterVersion   string
	ImagePrompt      string
	ImageSeed        int
	IsUpload         bool
	ImageData        *string
}
