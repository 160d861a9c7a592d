package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a blog post. The slug is the public URL key and is unique
// across all posts regardless of owner.
type Post struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title      string    `json:"title" gorm:"type:varchar(200)"`
	Slug       string    `json:"slug" gorm:"uniqueIndex;type:varchar(200)"`
	Content    string    `json:"content" gorm:"type:text"`
	Date       time.Time `json:"date"` // display timestamp, refreshed on every edit
	ImageRef   string    `json:"image_ref,omitempty" gorm:"type:varchar(255)"`
	OwnerID    string    `json:"owner_id" gorm:"index;type:varchar(36)"` // immutable after creation
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
