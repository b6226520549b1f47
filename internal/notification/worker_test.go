package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleet-backend/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, db, &webpush.Options{})

	wp.Dispatch("3b6e1a3e-0000-4000-8000-000000000001")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "3b6e1a3e-0000-4000-8000-000000000001", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		machineID := "3b6e1a3e-0000-4000-8000-000000000101"
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Máquina ESC-101 está disponível!", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_equipment_mapping.*WHERE .*sem\.equipment_id = \$1`).
			WithArgs(machineID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "unit_number" FROM "equipment" WHERE id = \$1 ORDER BY "equipment"."id" LIMIT \$[0-9]+`).
			WithArgs(machineID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"unit_number"}).AddRow("ESC-101"))

		wp.Dispatch(machineID)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		machineID := "3b6e1a3e-0000-4000-8000-000000000102"
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_equipment_mapping.*WHERE .*sem\.equipment_id = \$1`).
			WithArgs(machineID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "unit_number" FROM "equipment" WHERE id = \$1 ORDER BY "equipment"."id" LIMIT \$[0-9]+`).
			WithArgs(machineID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"unit_number"}).AddRow("ESC-102"))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs(subscription.Endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(machineID)

		// A short sleep to allow the worker to process the job.
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to machine ID when lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		machineID := "3b6e1a3e-0000-4000-8000-000000000103"
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/fallback",
			P256DH:   "test_p256dh_fallback",
			Auth:     "test_auth_fallback",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/fallback", sub.Endpoint)
				assert.Equal(t, fmt.Sprintf("Máquina %s está disponível!", machineID), string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions".*JOIN .*subscription_equipment_mapping.*WHERE .*sem\.equipment_id = \$1`).
			WithArgs(machineID).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, time.Now()))

		mock.ExpectQuery(`SELECT "unit_number" FROM "equipment" WHERE id = \$1 ORDER BY "equipment"."id" LIMIT \$[0-9]+`).
			WithArgs(machineID, 1).
			WillReturnError(fmt.Errorf("equipment not found"))

		wp.Dispatch(machineID)
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
