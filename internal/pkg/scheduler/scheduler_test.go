package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)

	assert.Error(t, s.Add("broken", "every now and then", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("hourly", "@every 1h", func(context.Context) error { return nil }))
	assert.Equal(t, 1, s.Len())
}

func TestRunPassesDeadlineAndSurvivesErrors(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)

	var calls int32
	s.run("failing", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return errors.New("boom")
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop(), time.Second)
	var calls int32
	require.NoError(t, s.Add("tick", "@every 1s", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))

	s.Start()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
