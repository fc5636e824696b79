package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmlite/contact-api/internal/domain"
	"github.com/crmlite/contact-api/internal/repository"
	"github.com/crmlite/contact-api/internal/service"
	"github.com/crmlite/contact-api/internal/testutil"
)

func TestContactPipeline_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db := testutil.SetupTestDB(t)
	svc := service.NewContactService(repository.NewContactRepository(db), nil)
	ctx := context.Background()

	t.Run("create normalizes and round-trips", func(t *testing.T) {
		view, err := svc.Create(ctx, service.CreateContactInput{
			Name:  " Ivan ",
			Email: "Ivan@Example.com ",
			Phone: "+7 900 123-45-67",
		})
		require.NoError(t, err)

		assert.Equal(t, "Ivan", view.Name)
		assert.Equal(t, "ivan@example.com", view.Email)
		assert.Equal(t, "+7 900 123-45-67", view.Phone)
		assert.Equal(t, domain.ContactStatusActive, view.Status)

		got, err := svc.GetByID(ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, view, got)
	})

	t.Run("concurrent creates race to the constraint", func(t *testing.T) {
		const workers = 6
		var wg sync.WaitGroup
		errs := make([]error, workers)

		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Create(ctx, service.CreateContactInput{
					Name:  "Racer",
					Email: "racer@example.com",
					Phone: "1234567890",
				})
			}()
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
				continue
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, "email")
		}
		assert.Equal(t, 1, successes)

		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE email = 'racer@example.com'`).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("update keeps untouched fields intact", func(t *testing.T) {
		created, err := svc.Create(ctx, service.CreateContactInput{
			Name:  "Maria",
			Email: "maria@example.com",
			Phone: "+7 900 000-00-00",
		})
		require.NoError(t, err)

		status := "inactive"
		updated, err := svc.Update(ctx, created.ID, service.UpdateContactInput{Status: &status})
		require.NoError(t, err)

		assert.Equal(t, domain.ContactStatusInactive, updated.Status)
		assert.Equal(t, created.Name, updated.Name)
		assert.Equal(t, created.Email, updated.Email)
		assert.Equal(t, created.Phone, updated.Phone)

		active, err := svc.ListActive(ctx)
		require.NoError(t, err)
		for _, c := range active {
			assert.NotEqual(t, created.ID, c.ID)
		}
	})

	t.Run("update to existing email fails without changes", func(t *testing.T) {
		email := "ivan@example.com"
		maria, err := svc.GetByID(ctx, mustFindByEmail(t, db, "maria@example.com"))
		require.NoError(t, err)

		_, err = svc.Update(ctx, maria.ID, service.UpdateContactInput{Email: &email})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "email")

		unchanged, err := svc.GetByID(ctx, maria.ID)
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", unchanged.Email)
	})

	t.Run("delete is idempotent about absence", func(t *testing.T) {
		created, err := svc.Create(ctx, service.CreateContactInput{
			Name:  "Temp",
			Email: "temp@example.com",
			Phone: "1234567890",
		})
		require.NoError(t, err)

		before := testutil.CountContacts(t, db)

		deleted, err := svc.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = svc.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		assert.Equal(t, before-1, testutil.CountContacts(t, db))
	})
}

func mustFindByEmail(t *testing.T, db *sql.DB, email string) int64 {
	t.Helper()

	var id int64
	if err := db.QueryRow(`SELECT id FROM contacts WHERE email = $1`, email).Scan(&id); err != nil {
		t.Fatalf("find contact by email %s: %v", email, err)
	}
	return id
}
