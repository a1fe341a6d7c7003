package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netreliability/pkg/config"
	"netreliability/pkg/logger"
)

func init() {
	logger.Init("error")
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// ============================================================
// TRANSACTIONS
// ============================================================

func TestWithTransaction_Commit(t *testing.T) {
	mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM runs`).WithArgs("run-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := WithTransaction(ctx, mock, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM runs WHERE id = $1`, "run-1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	expectedErr := errors.New("db error")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := WithTransaction(context.Background(), mock, func(tx pgx.Tx) error {
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackFailure(t *testing.T) {
	mock := newMock(t)
	rbErr := errors.New("connection lost")

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(rbErr)

	err := WithTransaction(context.Background(), mock, func(tx pgx.Tx) error {
		return errors.New("insert failed")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, rbErr)
	assert.Contains(t, err.Error(), "insert failed")
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), mock, func(tx pgx.Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := WithTransaction(context.Background(), mock, func(tx pgx.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}

func TestWithTransactionResult(t *testing.T) {
	mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectCommit()

	count, err := WithTransactionResult(ctx, mock, func(tx pgx.Tx) (int64, error) {
		var n int64
		err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n)
		return n, err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionResult_CommitFailure(t *testing.T) {
	mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	value, err := WithTransactionResult(context.Background(), mock, func(tx pgx.Tx) (string, error) {
		return "id", nil
	})

	require.Error(t, err)
	assert.Empty(t, value)
}

// ============================================================
// POOL & HEALTH
// ============================================================

func TestNewPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		Database:        "netreliability",
		Username:        "netrel",
		Password:        "secret",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 5 * time.Minute,
	}

	poolConfig, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(10), poolConfig.MaxConns)
	assert.Equal(t, int32(2), poolConfig.MinConns)
	assert.Equal(t, time.Hour, poolConfig.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, poolConfig.MaxConnIdleTime)
	assert.Equal(t, "localhost", poolConfig.ConnConfig.Host)
	assert.Equal(t, uint16(5432), poolConfig.ConnConfig.Port)
	assert.Equal(t, "netreliability", poolConfig.ConnConfig.Database)
}

func TestNewPoolConfig_IdleAboveMax(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "localhost", Port: 5432, Database: "d", Username: "u", SSLMode: "disable",
		MaxOpenConns: 2, MaxIdleConns: 5,
	}

	poolConfig, err := newPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), poolConfig.MaxConns)
	assert.Equal(t, int32(0), poolConfig.MinConns)
}

func TestHealthCheck(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT 1`).WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))
	require.NoError(t, HealthCheck(context.Background(), mock))

	mock.ExpectQuery(`SELECT 1`).WillReturnError(errors.New("down"))
	err := HealthCheck(context.Background(), mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check failed")
}
