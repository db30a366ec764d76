package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srivatsav-tech/hubspot-data/pkg/models/store"
)

type fakeRefresher struct {
	runs atomic.Int64
	err  error
}

func (f *fakeRefresher) Run(context.Context) (store.Snapshot, error) {
	f.runs.Add(1)
	if f.err != nil {
		return store.Snapshot{}, f.err
	}
	return store.Snapshot{ID: "snap", DealCount: 1}, nil
}

func TestScheduler_RefreshesOnInterval(t *testing.T) {
	ref := &fakeRefresher{}
	var invalidations atomic.Int64

	s, err := New(ref, func() { invalidations.Add(1) }, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	runs := ref.runs.Load()
	assert.GreaterOrEqual(t, runs, int64(2))
	assert.Equal(t, runs, invalidations.Load())
}

func TestScheduler_KeepsRunningAfterFailure(t *testing.T) {
	ref := &fakeRefresher{err: fmt.Errorf("hubspot: status 503")}
	var invalidations atomic.Int64

	s, err := New(ref, func() { invalidations.Add(1) }, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, ref.runs.Load(), int64(2), "failures must not stop the loop")
	assert.Zero(t, invalidations.Load(), "failed refreshes must not invalidate caches")
}

func TestScheduler_DoubleStart(t *testing.T) {
	s, err := New(&fakeRefresher{}, nil, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s, err := New(&fakeRefresher{}, nil, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, time.Minute)
	assert.Error(t, err)

	_, err = New(&fakeRefresher{}, nil, 0)
	assert.Error(t, err)
}
