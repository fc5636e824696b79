package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crmlite/contact-api/internal/domain"
)

const frontendLogColumns = `id, level, message, error_type, error_message, stack_trace,
	url, user_agent, context, user_id, session_id, ip_address, request_id,
	logged_at, created_at, is_resolved, is_ignored`

type FrontendLogRepository struct {
	db *sql.DB
}

func NewFrontendLogRepository(db *sql.DB) *FrontendLogRepository {
	return &FrontendLogRepository{db: db}
}

// Create stores the entry and fills in the assigned id and creation time.
func (r *FrontendLogRepository) Create(ctx context.Context, entry *domain.FrontendLog) error {
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO frontend_logs (
			level, message, error_type, error_message, stack_trace,
			url, user_agent, context, user_id, session_id, ip_address, request_id,
			logged_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		entry.Level, entry.Message, entry.ErrorType, entry.ErrorMessage, entry.StackTrace,
		entry.URL, entry.UserAgent, nullableJSON(entry.Context), entry.UserID,
		entry.SessionID, entry.IPAddress, entry.RequestID,
		entry.LoggedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Stats counts entries per level logged in the last periodHours hours, plus
// unresolved, non-ignored error/critical entries in the same window.
func (r *FrontendLogRepository) Stats(ctx context.Context, periodHours int) (*domain.LogStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM frontend_logs
		WHERE logged_at >= now() - make_interval(hours => $1)
		GROUP BY level`,
		periodHours,
	)
	if err != nil {
		return nil, fmt.Errorf("Stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.LogStats{
		PeriodHours:   periodHours,
		CountsByLevel: make(map[domain.LogLevel]int),
	}
	for rows.Next() {
		var level domain.LogLevel
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("Stats: scan: %w", err)
		}
		stats.CountsByLevel[level] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Stats: rows: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM frontend_logs
		WHERE level IN ($1, $2)
		AND NOT is_resolved AND NOT is_ignored
		AND logged_at >= now() - make_interval(hours => $3)`,
		domain.LogLevelError, domain.LogLevelCritical, periodHours,
	).Scan(&stats.UnresolvedErrors)
	if err != nil {
		return nil, fmt.Errorf("Stats: unresolved: %w", err)
	}

	return stats, nil
}

// lib/pq rejects empty []byte for jsonb columns, so absent context becomes NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
