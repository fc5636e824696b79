package domain

import "time"

type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
)

func (s ContactStatus) IsValid() bool {
	return s == ContactStatusActive || s == ContactStatusInactive
}

type Contact struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Status    ContactStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContactFields carries the normalized values the store persists on create.
// The store assigns ID and both timestamps.
type NewContactFields struct {
	Name   string
	Email  string
	Phone  string
	Status ContactStatus
}

// ContactPatch holds a partial update. Nil fields are left untouched.
type ContactPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Status *ContactStatus
}

func (p ContactPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Status == nil
}
