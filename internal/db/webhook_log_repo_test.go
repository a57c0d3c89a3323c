package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipeclub/internal/types"
)

func testLogEntry() *types.WebhookLogEntry {
	eventID := "evt_1"
	return &types.WebhookLogEntry{
		EventID:        &eventID,
		EventType:      "subscription_created",
		CustomerEmail:  "ana@example.com",
		ProductName:    "Plano Mensal",
		SubscriptionID: "sub_123",
		Status:         "active",
		RawPayload:     types.RawPayload{"event": "subscription_created"},
		Success:        true,
	}
}

func TestWebhookLogRepo_Insert_Success(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), testLogEntry())
	require.NoError(t, err)
	dbx.AssertExpectations(t)
}

func TestWebhookLogRepo_Insert_GeneratesIDWhenMissing(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	var insertedID string
	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) {
			queryArgs := args.Get(2).([]any)
			insertedID = queryArgs[0].(string)
		}).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), testLogEntry())
	require.NoError(t, err)
	assert.NotEmpty(t, insertedID)
}

func TestWebhookLogRepo_Insert_DBError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), testLogEntry())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestWebhookLogRepo_HasSucceeded_True(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				*(dest[0].(*bool)) = true
				return nil
			},
		})

	done, err := repo.HasSucceeded(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestWebhookLogRepo_HasSucceeded_False(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				*(dest[0].(*bool)) = false
				return nil
			},
		})

	done, err := repo.HasSucceeded(context.Background(), "evt_new")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestWebhookLogRepo_HasSucceeded_DBError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewWebhookLogRepo(dbx, nil)

	dbx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("timeout")})

	_, err := repo.HasSucceeded(context.Background(), "evt_1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
