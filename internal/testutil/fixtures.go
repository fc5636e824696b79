package testutil

import (
	"database/sql"
	"testing"

	"github.com/crmlite/contact-api/internal/domain"
)

// SeedContact inserts a contact row directly, bypassing the service pipeline.
// Values are stored exactly as given; pass normalized fields.
func SeedContact(t *testing.T, db *sql.DB, name, email, phone string, status domain.ContactStatus) *domain.Contact {
	t.Helper()

	var c domain.Contact
	err := db.QueryRow(
		`INSERT INTO contacts (name, email, phone, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, email, phone, status, created_at, updated_at`,
		name, email, phone, status,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		t.Fatalf("seed contact %s: %v", email, err)
	}
	return &c
}

func CountContacts(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&count); err != nil {
		t.Fatalf("count contacts: %v", err)
	}
	return count
}

func CountFrontendLogs(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM frontend_logs`).Scan(&count); err != nil {
		t.Fatalf("count frontend logs: %v", err)
	}
	return count
}
