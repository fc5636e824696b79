package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/crmlite/contact-api/internal/domain"
)

// MemoryContactRepository is a mutex-guarded in-memory store with the same
// contract as the Postgres adapter, including atomic email uniqueness. Used
// by unit tests that don't need a database.
type MemoryContactRepository struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]domain.Contact
	byEmail  map[string]int64
}

func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{
		nextID:   1,
		contacts: make(map[int64]domain.Contact),
		byEmail:  make(map[string]int64),
	}
}

func (r *MemoryContactRepository) GetAll(_ context.Context) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(domain.Contact) bool { return true }), nil
}

func (r *MemoryContactRepository) GetActive(_ context.Context) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(c domain.Contact) bool {
		return c.Status == domain.ContactStatusActive
	}), nil
}

func (r *MemoryContactRepository) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok {
		return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
	}
	return &c, nil
}

func (r *MemoryContactRepository) GetByEmail(_ context.Context, email string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("GetByEmail: %w", domain.ErrNotFound)
	}
	c := r.contacts[id]
	return &c, nil
}

func (r *MemoryContactRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *MemoryContactRepository) Create(_ context.Context, fields domain.NewContactFields) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[fields.Email]; taken {
		return nil, fmt.Errorf("Create: %w", domain.ErrDuplicateEmail)
	}

	now := time.Now().UTC()
	c := domain.Contact{
		ID:        r.nextID,
		Name:      fields.Name,
		Email:     fields.Email,
		Phone:     fields.Phone,
		Status:    fields.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.contacts[c.ID] = c
	r.byEmail[c.Email] = c.ID
	return &c, nil
}

func (r *MemoryContactRepository) Update(_ context.Context, id int64, patch domain.ContactPatch) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
	}
	if patch.IsEmpty() {
		return &c, nil
	}

	if patch.Email != nil && *patch.Email != c.Email {
		if _, taken := r.byEmail[*patch.Email]; taken {
			return nil, fmt.Errorf("Update: %w", domain.ErrDuplicateEmail)
		}
		delete(r.byEmail, c.Email)
		c.Email = *patch.Email
		r.byEmail[c.Email] = id
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	c.UpdatedAt = time.Now().UTC()

	r.contacts[id] = c
	return &c, nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return false, nil
	}
	delete(r.contacts, id)
	delete(r.byEmail, c.Email)
	return true, nil
}

// snapshot copies matching contacts ordered newest-created first. Creation
// order follows the monotonic IDs, so sorting by ID descending matches the
// Postgres adapter's ordering.
func (r *MemoryContactRepository) snapshot(keep func(domain.Contact) bool) []domain.Contact {
	var out []domain.Contact
	for _, c := range r.contacts {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
