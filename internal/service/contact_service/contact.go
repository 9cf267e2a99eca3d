package contact_service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adzap-tech/adzap-backend/internal/adzap_errors"
	"github.com/adzap-tech/adzap-backend/internal/email"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/storage"
	"github.com/adzap-tech/adzap-backend/middleware"
)

const KeyContactInbox = "CONTACT_INBOX"

type ContactService struct {
	Store storage.Store
}

type ContactMessageInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// Submit appends a contact message to the newest-first log and notifies
// the organizer inbox, best effort.
func (c *ContactService) Submit(
	ctx context.Context,
	input ContactMessageInput,
) (storage.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if err := service.ValidateInput(input); err != nil {
		return storage.ContactMessage{}, err
	}

	msg := storage.ContactMessage{
		ID:        storage.NextID(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		CreatedAt: storage.NowISO(),
	}
	if err := c.Store.InsertContactMessage(ctx, msg); err != nil {
		return storage.ContactMessage{}, err
	}

	log.WithField("message_id", msg.ID).Info("stored contact message")

	if inbox := os.Getenv(KeyContactInbox); inbox != "" {
		subject := msg.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		if err := email.NewMail(
			ctx,
			fmt.Sprintf("ADZAP contact: %s", subject),
			fmt.Sprintf("From %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
			email.KeyEmailBodyPlain,
			email.PurposeContactNotification,
			inbox,
		); err != nil && !errors.Is(err, adzap_errors.ErrEmailServiceStopped) {
			log.Warnf("cannot queue contact notification, %v", err)
		}
	}

	return msg, nil
}

// Delete removes one message from the log. Admin sessions only.
func (c *ContactService) Delete(ctx context.Context, id int64) error {
	if _, err := service.RequireRole(ctx, middleware.RoleAdmin); err != nil {
		return err
	}
	if err := c.Store.DeleteContactMessage(ctx, id); err != nil {
		return err
	}
	log.WithField("message_id", id).Info("deleted contact message")
	return nil
}
