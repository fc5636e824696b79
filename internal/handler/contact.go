package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/crmlite/contact-api/internal/domain"
	"github.com/crmlite/contact-api/internal/logging"
	"github.com/crmlite/contact-api/internal/service"
)

type contactService interface {
	ListAll(ctx context.Context) ([]service.ContactView, error)
	ListActive(ctx context.Context) ([]service.ContactView, error)
	GetByID(ctx context.Context, id int64) (*service.ContactView, error)
	Create(ctx context.Context, in service.CreateContactInput) (*service.ContactView, error)
	Update(ctx context.Context, id int64, in service.UpdateContactInput) (*service.ContactView, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ContactHandler struct {
	contacts contactService
}

func NewContactHandler(contacts contactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactListResponse struct {
	Users []service.ContactView `json:"users"`
}

type createContactRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

type updateContactRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status"`
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.ListAll(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list contacts", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, contactListResponse{Users: contacts})
}

func (h *ContactHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.ListActive(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list active contacts", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, contactListResponse{Users: contacts})
}

func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(r.Context()).Error("failed to get contact", "error", err, "contact_id", id)
		}
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	contact, err := h.contacts.Create(r.Context(), service.CreateContactInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	})
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			logging.FromContext(r.Context()).Error("failed to create contact", "error", err)
		}
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}

	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil && req.Status == nil {
		RespondAppError(w, ErrEmptyUpdate, nil)
		return
	}

	contact, err := h.contacts.Update(r.Context(), id, service.UpdateContactInput{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	})
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) && !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(r.Context()).Error("failed to update contact", "error", err, "contact_id", id)
		}
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactIDFromPath(w, r)
	if !ok {
		return
	}

	deleted, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to delete contact", "error", err, "contact_id", id)
		RespondDomainError(w, err)
		return
	}
	if !deleted {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}
	RespondSuccess(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}

func contactIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondAppError(w, ErrInvalidID, nil)
		return 0, false
	}
	return id, true
}
