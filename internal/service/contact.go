package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crmlite/contact-api/internal/domain"
	"github.com/crmlite/contact-api/internal/recorder"
	"github.com/crmlite/contact-api/internal/validation"
)

type contactStore interface {
	GetAll(ctx context.Context) ([]domain.Contact, error)
	GetActive(ctx context.Context) ([]domain.Contact, error)
	GetByID(ctx context.Context, id int64) (*domain.Contact, error)
	GetByEmail(ctx context.Context, email string) (*domain.Contact, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, fields domain.NewContactFields) (*domain.Contact, error)
	Update(ctx context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ContactView is the contact shape exposed to API callers. Timestamps are
// administrative and stay internal.
type ContactView struct {
	ID     int64                `json:"id"`
	Name   string               `json:"name"`
	Email  string               `json:"email"`
	Phone  string               `json:"phone"`
	Status domain.ContactStatus `json:"status"`
}

type CreateContactInput struct {
	Name   string
	Email  string
	Phone  string
	Status string
}

// UpdateContactInput carries partial updates; nil fields are not applied.
type UpdateContactInput struct {
	Name   *string
	Email  *string
	Phone  *string
	Status *string
}

// ContactService owns the validate, normalize, uniqueness-check, persist,
// serialize pipeline. It holds no mutable state and is safe for concurrent
// use; email uniqueness under concurrent writes is guaranteed by the store's
// constraint, not by the pre-checks here.
type ContactService struct {
	store    contactStore
	recorder recorder.Recorder
}

func NewContactService(store contactStore, rec recorder.Recorder) *ContactService {
	if rec == nil {
		rec = recorder.Nop{}
	}
	return &ContactService{store: store, recorder: rec}
}

func (s *ContactService) ListAll(ctx context.Context) ([]ContactView, error) {
	s.recorder.Started(ctx, "contact.list")

	contacts, err := s.store.GetAll(ctx)
	if err != nil {
		s.recorder.Failed(ctx, "contact.list", err)
		return nil, fmt.Errorf("ListAll: %w", err)
	}

	s.recorder.Succeeded(ctx, "contact.list", "count", len(contacts))
	return serializeContacts(contacts), nil
}

func (s *ContactService) ListActive(ctx context.Context) ([]ContactView, error) {
	s.recorder.Started(ctx, "contact.list_active")

	contacts, err := s.store.GetActive(ctx)
	if err != nil {
		s.recorder.Failed(ctx, "contact.list_active", err)
		return nil, fmt.Errorf("ListActive: %w", err)
	}

	s.recorder.Succeeded(ctx, "contact.list_active", "count", len(contacts))
	return serializeContacts(contacts), nil
}

func (s *ContactService) GetByID(ctx context.Context, id int64) (*ContactView, error) {
	s.recorder.Started(ctx, "contact.get", "contact_id", id)

	contact, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.recorder.Failed(ctx, "contact.get", err, "contact_id", id)
		return nil, fmt.Errorf("GetByID: %w", err)
	}

	s.recorder.Succeeded(ctx, "contact.get", "contact_id", contact.ID)
	view := serializeContact(contact)
	return &view, nil
}

func (s *ContactService) Create(ctx context.Context, in CreateContactInput) (*ContactView, error) {
	if in.Status == "" {
		in.Status = string(domain.ContactStatusActive)
	}
	status := domain.ContactStatus(in.Status)

	s.recorder.Started(ctx, "contact.create", "email", validation.NormalizeEmail(in.Email))

	// Validation runs on the raw fields; length checks trim internally.
	if fields := validation.ValidateContact(in.Name, in.Email, in.Phone, status); fields != nil {
		err := domain.NewValidationError(fields)
		s.recorder.Failed(ctx, "contact.create", err)
		return nil, err
	}

	email := validation.NormalizeEmail(in.Email)

	// Advisory pre-check: gives a friendly failure without burning a write.
	// The constraint inside Create is what actually closes the race.
	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		s.recorder.Failed(ctx, "contact.create", err, "email", email)
		return nil, fmt.Errorf("Create: exists check: %w", err)
	}
	if exists {
		err := duplicateEmailError()
		s.recorder.Failed(ctx, "contact.create", err, "email", email)
		return nil, err
	}

	contact, err := s.store.Create(ctx, domain.NewContactFields{
		Name:   strings.TrimSpace(in.Name),
		Email:  email,
		Phone:  strings.TrimSpace(in.Phone),
		Status: status,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// Lost the race after the pre-check passed. Same failure shape
			// as the pre-check, the caller can't tell the difference.
			verr := duplicateEmailError()
			s.recorder.Failed(ctx, "contact.create", verr, "email", email)
			return nil, verr
		}
		s.recorder.Failed(ctx, "contact.create", err, "email", email)
		return nil, fmt.Errorf("Create: %w", err)
	}

	s.recorder.Succeeded(ctx, "contact.create", "contact_id", contact.ID, "email", contact.Email)

	view := serializeContact(contact)
	return &view, nil
}

func (s *ContactService) Update(ctx context.Context, id int64, in UpdateContactInput) (*ContactView, error) {
	s.recorder.Started(ctx, "contact.update", "contact_id", id)

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recorder.Failed(ctx, "contact.update", err, "contact_id", id)
			return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
		}
		s.recorder.Failed(ctx, "contact.update", err, "contact_id", id)
		return nil, fmt.Errorf("Update: load: %w", err)
	}

	patch, verr := s.buildPatch(ctx, current, in)
	if verr != nil {
		s.recorder.Failed(ctx, "contact.update", verr, "contact_id", id)
		return nil, verr
	}

	contact, err := s.store.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			// Another writer claimed the email between our load and this
			// write; the constraint reports it and the caller sees the same
			// field error as everywhere else.
			verr := duplicateEmailError()
			s.recorder.Failed(ctx, "contact.update", verr, "contact_id", id)
			return nil, verr
		case errors.Is(err, domain.ErrNotFound):
			s.recorder.Failed(ctx, "contact.update", err, "contact_id", id)
			return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
		default:
			s.recorder.Failed(ctx, "contact.update", err, "contact_id", id)
			return nil, fmt.Errorf("Update: %w", err)
		}
	}

	s.recorder.Succeeded(ctx, "contact.update", "contact_id", contact.ID, "email", contact.Email)

	view := serializeContact(contact)
	return &view, nil
}

// buildPatch validates and normalizes each supplied field, aggregating all
// violations. The uniqueness pre-check runs only when the email actually
// changes; stored emails are always lowercase so a plain compare suffices.
func (s *ContactService) buildPatch(ctx context.Context, current *domain.Contact, in UpdateContactInput) (domain.ContactPatch, error) {
	fields := make(map[string]string)
	var patch domain.ContactPatch

	if in.Name != nil {
		if msg := validation.CheckName(*in.Name); msg != "" {
			fields["name"] = msg
		} else {
			name := strings.TrimSpace(*in.Name)
			patch.Name = &name
		}
	}

	if in.Email != nil {
		if msg := validation.CheckEmail(*in.Email); msg != "" {
			fields["email"] = msg
		} else {
			email := validation.NormalizeEmail(*in.Email)
			if email != current.Email {
				exists, err := s.store.ExistsByEmail(ctx, email)
				if err != nil {
					return patch, fmt.Errorf("Update: exists check: %w", err)
				}
				if exists {
					fields["email"] = domain.ErrDuplicateEmail.Error()
				}
			}
			if _, dup := fields["email"]; !dup {
				patch.Email = &email
			}
		}
	}

	if in.Phone != nil {
		if msg := validation.CheckPhone(*in.Phone); msg != "" {
			fields["phone"] = msg
		} else {
			phone := strings.TrimSpace(*in.Phone)
			patch.Phone = &phone
		}
	}

	if in.Status != nil {
		status := domain.ContactStatus(*in.Status)
		if msg := validation.CheckStatus(status); msg != "" {
			fields["status"] = msg
		} else {
			patch.Status = &status
		}
	}

	if len(fields) > 0 {
		return patch, domain.NewValidationError(fields)
	}
	return patch, nil
}

func (s *ContactService) Delete(ctx context.Context, id int64) (bool, error) {
	s.recorder.Started(ctx, "contact.delete", "contact_id", id)

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		s.recorder.Failed(ctx, "contact.delete", err, "contact_id", id)
		return false, fmt.Errorf("Delete: %w", err)
	}

	// A missing id is a defined false result, not a failure.
	s.recorder.Succeeded(ctx, "contact.delete", "contact_id", id, "deleted", deleted)
	return deleted, nil
}

func duplicateEmailError() *domain.ValidationError {
	return domain.NewValidationError(map[string]string{
		"email": domain.ErrDuplicateEmail.Error(),
	})
}

func serializeContact(c *domain.Contact) ContactView {
	return ContactView{
		ID:     c.ID,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Status: c.Status,
	}
}

func serializeContacts(contacts []domain.Contact) []ContactView {
	views := make([]ContactView, 0, len(contacts))
	for i := range contacts {
		views = append(views, serializeContact(&contacts[i]))
	}
	return views
}
