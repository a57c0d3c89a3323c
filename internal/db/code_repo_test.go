package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipeclub/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- VerificationCodeRepo Tests ---

func testCode(now time.Time) types.VerificationCode {
	return types.VerificationCode{
		ID:        "0c9b2f14-8c57-4f2e-9a31-6a1f6a0f0a01",
		Email:     "ana@example.com",
		Code:      "123456",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}

func TestVerificationCodeRepo_Insert_Success(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := repo.Insert(context.Background(), testCode(time.Now().UTC()))
	require.NoError(t, err)
	dbx.AssertExpectations(t)
}

func TestVerificationCodeRepo_Insert_DBError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	err := repo.Insert(context.Background(), testCode(time.Now().UTC()))
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestVerificationCodeRepo_Consume_Found(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	ok, err := repo.Consume(context.Background(), "ana@example.com", "123456", time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerificationCodeRepo_Consume_NotFound(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	ok, err := repo.Consume(context.Background(), "ana@example.com", "999999", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerificationCodeRepo_Consume_DBError(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("timeout"))

	_, err := repo.Consume(context.Background(), "ana@example.com", "123456", time.Now().UTC())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestVerificationCodeRepo_DeleteByEmail_ReturnsCount(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 3"), nil)

	count, err := repo.DeleteByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestVerificationCodeRepo_DeleteExpired_ReturnsCount(t *testing.T) {
	dbx := new(mockDBTX)
	repo := NewVerificationCodeRepo(dbx, nil)

	dbx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 7"), nil)

	count, err := repo.DeleteExpired(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
