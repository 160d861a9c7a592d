package repositories

import (
	"sort"
	"sync"

	"gopress/internal/models"

	"github.com/google/uuid"
)

// MockContactRepository is an in-memory implementation of ContactRepository.
type MockContactRepository struct {
	msgs map[string]models.ContactMessage
	mu   sync.RWMutex
}

// NewMockContactRepository creates a new instance of MockContactRepository.
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{
		msgs: make(map[string]models.ContactMessage),
	}
}

// Create stores a new contact message.
func (r *MockContactRepository) Create(msg *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	r.msgs[msg.ID] = *msg
	return nil
}

// GetAll returns all contact messages, most recent first.
func (r *MockContactRepository) GetAll() ([]models.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := make([]models.ContactMessage, 0, len(r.msgs))
	for _, m := range r.msgs {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Date.After(msgs[j].Date)
	})
	return msgs, nil
}
