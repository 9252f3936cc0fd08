package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/chargedesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsRequestFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := obscontext.WithRequestID(context.Background(), "req-42")
	ctx = obscontext.WithRoute(ctx, "/api/chargebacks")

	WithContext(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/api/chargebacks", fields["route"])
	assert.Contains(t, fields, "trace_id")
}

func TestGormLoggerLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())
	query := func() (string, int64) { return "SELECT * FROM chargebacks", 3 }

	l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
	l.Trace(context.Background(), time.Now(), query, context.DeadlineExceeded)
	l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), query, nil)

	entries := logs.FilterMessage("store.query").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "chargebacks", entries[0].ContextMap()["table"])
	assert.Equal(t, "SELECT", entries[0].ContextMap()["operation"])
}

func TestParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "SELECT 1 WHERE email = ?", "a@b.c")
	assert.Equal(t, "SELECT 1 WHERE email = ?", sql)
	assert.Nil(t, params)
}
