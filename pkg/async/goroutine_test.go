package async

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	err := Run(context.Background(), time.Second, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)

	want := errors.New("boom")
	err = Run(context.Background(), time.Second, func(ctx context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestRun_Timeout(t *testing.T) {
	err := Run(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_Panic(t *testing.T) {
	err := Run(context.Background(), time.Second, func(ctx context.Context) error {
		panic("kaboom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: kaboom")
}

func TestSafeGo_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	done := SafeGo(context.Background(), logger, time.Second, "warm-up", func(ctx context.Context) error {
		panic("kaboom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
	assert.Contains(t, buf.String(), `"task":"warm-up"`)
	assert.Contains(t, buf.String(), "Background task failed")
}
