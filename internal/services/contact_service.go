package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/validation"
	"gopress/pkg/mail"

	"github.com/go-playground/validator/v10"
)

// MailPublisher enqueues an outbound mail for asynchronous delivery.
type MailPublisher interface {
	PublishMail(msg mail.Message) error
}

// ContactInput is the typed payload of the public contact form.
type ContactInput struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Phone   string `validate:"omitempty,max=30"`
	Message string `validate:"required"`
}

// ContactService validates and records inbound contact messages and
// forwards them to the administrator by mail.
type ContactService struct {
	repo       repositories.ContactRepository
	publisher  MailPublisher
	adminEmail string
	validate   *validator.Validate
}

// NewContactService creates a new ContactService.
func NewContactService(repo repositories.ContactRepository, publisher MailPublisher, adminEmail string) *ContactService {
	return &ContactService{
		repo:       repo,
		publisher:  publisher,
		adminEmail: adminEmail,
		validate:   validation.New(),
	}
}

// Submit persists the message and then dispatches the admin notification
// as an independent unit of work. A dispatch failure is reported as
// ErrMailDelivery but never undoes the already-committed record, so the
// returned message is non-nil in that case.
func (s *ContactService) Submit(input ContactInput) (*models.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Message = strings.TrimSpace(input.Message)

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msg := &models.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Message: input.Message,
		Date:    time.Now(),
	}
	if err := s.repo.Create(msg); err != nil {
		return nil, err
	}

	if s.publisher == nil || s.adminEmail == "" {
		log.Println("Mail dispatch is not configured. Skipping contact notification.")
		return msg, nil
	}

	if err := s.publisher.PublishMail(s.notification(msg)); err != nil {
		log.Printf("Failed to dispatch contact notification for message %s: %v", msg.ID, err)
		return msg, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return msg, nil
}

// notification builds the admin mail for one contact message.
func (s *ContactService) notification(msg *models.ContactMessage) mail.Message {
	phone := msg.Phone
	if phone == "" {
		phone = "Not provided"
	}
	body := fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nMessage: %s\nDate: %s\n",
		msg.Name, msg.Email, phone, msg.Message, msg.Date.Format("02-01-2006 03:04 PM"),
	)

	return mail.Message{
		Subject:    fmt.Sprintf("New Contact Form Submission from %s", msg.Name),
		Sender:     msg.Email,
		Recipients: []string{s.adminEmail},
		Body:       body,
	}
}
