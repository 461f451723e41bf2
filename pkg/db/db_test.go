package db

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taskmanager/pkg/config"
	"taskmanager/pkg/metrics"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "app",
		Password: "p@ss:word",
		Name:     "tasks",
	})

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "/tasks", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	pw, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss:word", pw)

	_, err = pgx.ParseConfig(dsn)
	assert.NoError(t, err)
}

func TestQueryLabels(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT id FROM users WHERE email = $1", "select", "users"},
		{"\n  INSERT INTO tasks (user_id, title) VALUES ($1, $2)", "insert", "tasks"},
		{"UPDATE tasks SET title = $1", "update", "tasks"},
		{"DELETE FROM tasks WHERE id = $1", "delete", "tasks"},
		{"SELECT 1 + 1", "select", "unknown"},
		{"", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			op, table := QueryLabels(tt.sql)
			assert.Equal(t, tt.operation, op)
			assert.Equal(t, tt.table, table)
		})
	}
}

func TestSlowQueryTracer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), time.Nanosecond)

	before := testutil.ToFloat64(metrics.SlowQueryCount)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT * FROM tasks"})
	time.Sleep(time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1"), Err: errors.New("x")})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "slow-query", logs.All()[0].Message)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SlowQueryCount))
}

func TestSlowQueryTracerFastQuery(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), time.Hour)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	assert.Zero(t, logs.Len())
}
