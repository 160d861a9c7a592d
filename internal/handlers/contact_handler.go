package handlers

import (
	"errors"
	"log"

	"gopress/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ContactHandler handles the public contact form.
type ContactHandler struct {
	service *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

// RegisterRoutes registers the contact routes with the Fiber app.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleSubmit)
}

// ContactRequest represents the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Message string `json:"message" form:"message"`
}

// HandleSubmit validates and records a contact message. The message is
// committed before the admin notification goes out, so a mail failure is
// reported without losing the submission.
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing contact request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	msg, err := h.service.Submit(services.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Name, email, and message are required fields!",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrMailDelivery):
			// The message itself is already stored.
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"message": "Your message was received, but the notification could not be sent yet.",
				"contact": msg,
			})
		default:
			log.Printf("Error submitting contact message: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "An error occurred while sending your message. Please try again.",
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your message has been sent successfully!",
		"contact": msg,
	})
}
