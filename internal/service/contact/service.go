// Package contact accepts public contact form submissions.
package contact

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acesastra/ace-portal/internal/metrics"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// Form is the contact form payload.
type Form struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Message   string `json:"message" validate:"required"`
}

// ValidationError lists the fields that failed validation and the rule each broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, tag := range e.Fields {
		parts = append(parts, field+": "+tag)
	}
	return "invalid contact form: " + strings.Join(parts, ", ")
}

// MessageRepository stores contact messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}

// Notifier posts a notice about a new message.
type Notifier interface {
	Enabled() bool
	SendContactNotice(ctx context.Context, msg *models.ContactMessage) error
}

// Service handles contact form submissions.
type Service struct {
	repo     MessageRepository
	notifier Notifier
	validate *validator.Validate
	log      *logger.Logger
}

// NewService creates a new contact service.
func NewService(repo *repository.ContactRepository, notifier Notifier, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, notifier, log)
}

// NewServiceWithInterfaces creates a new contact service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo MessageRepository, notifier Notifier, log *logger.Logger) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Service{repo: repo, notifier: notifier, validate: v, log: log}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Submit validates and stores a message, then notifies. Notifier failures
// are logged and do not fail the submission.
func (s *Service) Submit(ctx context.Context, form Form) (*models.ContactMessage, error) {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Message = strings.TrimSpace(form.Message)

	if err := s.validate.Struct(form); err != nil {
		metrics.RecordContactMessage("invalid")
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			fields := make(map[string]string, len(ve))
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate contact form: %w", err)
	}

	msg := &models.ContactMessage{
		Name:    form.FirstName + " " + form.LastName,
		Email:   form.Email,
		Message: form.Message,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		metrics.RecordContactMessage("error")
		return nil, err
	}
	metrics.RecordContactMessage("stored")

	s.log.Info().Str("message_id", msg.ID).Str("email", msg.Email).Msg("Contact message stored")

	if s.notifier != nil && s.notifier.Enabled() {
		if err := s.notifier.SendContactNotice(ctx, msg); err != nil {
			metrics.RecordNotificationFailed("contact_notice")
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to send contact notice")
		}
	}

	return msg, nil
}
