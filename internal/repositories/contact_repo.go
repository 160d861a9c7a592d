package repositories

import (
	"gopress/internal/models"
)

// ContactRepository defines the interface for contact message data access.
// Messages are write-once, so there is no update or delete.
type ContactRepository interface {
	Create(msg *models.ContactMessage) error
	GetAll() ([]models.ContactMessage, error)
}
