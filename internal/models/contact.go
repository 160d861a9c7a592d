package models

import (
	"time"

	"gorm.io/gorm"
)

// ContactMessage is a message submitted through the public contact form.
// Write-once: it has no owner and is never mutated after creation.
type ContactMessage struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(100)"`
	Email      string    `json:"email" gorm:"type:varchar(255)"`
	Phone      string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Message    string    `json:"message" gorm:"type:text"`
	Date       time.Time `json:"date"`
	gorm.Model
}
