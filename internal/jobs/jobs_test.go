package jobs

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls chan struct{}
	err   error
}

func (f *fakeSweeper) SweepExpired(ctx context.Context) (int64, error) {
	select {
	case f.calls <- struct{}{}:
	default:
	}
	return 3, f.err
}

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestStartRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{calls: make(chan struct{}, 1)}
	s, err := Start(sweeper, time.Hour, quiet())
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, 1, s.Jobs())
	select {
	case <-sweeper.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run on start")
	}
}

func TestSweepErrorIsLogged(t *testing.T) {
	sweeper := &fakeSweeper{calls: make(chan struct{}, 1), err: errors.New("db down")}
	s, err := Start(sweeper, time.Hour, quiet())
	require.NoError(t, err)
	defer s.Stop()

	select {
	case <-sweeper.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not run on start")
	}
}

func TestZeroIntervalDisablesSweep(t *testing.T) {
	s, err := Start(&fakeSweeper{calls: make(chan struct{}, 1)}, 0, quiet())
	require.NoError(t, err)
	defer s.Stop()
	assert.Equal(t, 0, s.Jobs())
}
