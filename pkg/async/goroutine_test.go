package async

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func TestSafeGo_RunsTask(t *testing.T) {
	var ran atomic.Bool
	done := make(chan struct{})

	SafeGo(context.Background(), testLogger(), time.Second, "test task", func(ctx context.Context) error {
		ran.Store(true)
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	assert.True(t, ran.Load())
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	done := make(chan struct{})

	SafeGo(context.Background(), testLogger(), time.Second, "panicking task", func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	// Reaching here without a crash is the assertion
}

func TestSafeGo_LogsError(t *testing.T) {
	done := make(chan struct{})

	SafeGo(context.Background(), testLogger(), time.Second, "failing task", func(ctx context.Context) error {
		close(done)
		return errors.New("expected failure")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestSafeGo_ContextTimeout(t *testing.T) {
	expired := make(chan struct{})

	SafeGo(context.Background(), testLogger(), 10*time.Millisecond, "slow task", func(ctx context.Context) error {
		<-ctx.Done()
		close(expired)
		return nil
	})

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("context never expired")
	}
}

func TestSafeGoNoError(t *testing.T) {
	done := make(chan struct{})

	SafeGoNoError(context.Background(), testLogger(), time.Second, "no error task", func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}
