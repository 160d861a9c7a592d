package models

import "gorm.io/gorm"

// User represents a registered author of the blog. Email doubles as the
// login key and is unique as stored (case-sensitive).
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" gorm:"type:varchar(100)" validate:"required,display_name,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `json:"-" gorm:"type:varchar(255)" validate:"required,strong_password"` // bcrypt hash once stored
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
