package repositories

import (
	"fmt"

	"gopress/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

// Create stores a new contact message. This commits independently of any
// later mail dispatch: a failed notification must not undo the record.
func (r *GORMContactRepository) Create(msg *models.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

// GetAll returns all contact messages, most recent first.
func (r *GORMContactRepository) GetAll() ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := r.db.Order("date DESC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to get contact messages: %w", err)
	}
	return msgs, nil
}
