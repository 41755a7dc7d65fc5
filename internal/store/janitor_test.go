package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime-monitor/internal/config"
)

func newTestJanitor(t *testing.T) (*Janitor, pgxmock.PgxPoolIface) {
	t.Helper()

	s, mock := newTestStore(t)
	cfg := &config.RetentionConfig{
		MaxAge:        720 * time.Hour,
		SweepInterval: 24 * time.Hour,
	}
	return NewJanitor(s, cfg, zerolog.Nop()), mock
}

func TestJanitor_Sweep(t *testing.T) {
	j, mock := newTestJanitor(t)

	mock.ExpectExec("DELETE FROM metrics").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 42))

	j.Sweep(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJanitor_SweepErrorDoesNotPropagate(t *testing.T) {
	j, mock := newTestJanitor(t)

	mock.ExpectExec("DELETE FROM metrics").
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(assert.AnError)

	// A failed sweep only logs; the janitor keeps running.
	j.Sweep(context.Background())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJanitor_RunSweepsUntilCanceled(t *testing.T) {
	j, mock := newTestJanitor(t)
	j.interval = 10 * time.Millisecond

	// Startup sweep plus at least one tick.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("DELETE FROM metrics").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM metrics").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := j.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
