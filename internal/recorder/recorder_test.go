package recorder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmlite/contact-api/internal/logging"
)

func TestSlog_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "req-1")
	ctx := logging.WithLogger(context.Background(), logger)

	rec := NewSlog()
	rec.Started(ctx, "contact.create", "email", "ivan@example.com")
	rec.Succeeded(ctx, "contact.create", "contact_id", 1)
	rec.Failed(ctx, "contact.delete", errors.New("boom"), "contact_id", 2)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"op":"contact.create"`)
	assert.Contains(t, out, `"outcome":"started"`)
	assert.Contains(t, out, `"outcome":"success"`)
	assert.Contains(t, out, `"outcome":"failed"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestSlog_SurvivesBareContext(t *testing.T) {
	rec := NewSlog()
	// Falls back to the default logger; must not panic either way.
	assert.NotPanics(t, func() {
		rec.Started(context.Background(), "contact.create")
	})
}
