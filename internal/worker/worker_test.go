package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vodworks/internal/models"
	"vodworks/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartIsIdempotent(t *testing.T) {
	env := newTestEnv(storage.KindMock)

	fetches := make(chan struct{}, 16)
	release := make(chan struct{})
	env.jobs.fetchHook = func() {
		fetches <- struct{}{}
		<-release
	}

	env.worker.Start()
	env.worker.Start() // no-op: must not spawn a second loop

	// One loop is mid-fetch and blocked. A duplicate loop would be in its
	// own fetch by now.
	<-fetches
	select {
	case <-fetches:
		t.Fatal("observed a second concurrent polling loop")
	case <-time.After(100 * time.Millisecond):
	}

	assert.True(t, env.worker.IsActive())

	close(release)
	env.worker.Stop()
	env.worker.Wait()
	assert.False(t, env.worker.IsActive())
}

func TestStopIsObservedBetweenJobs(t *testing.T) {
	env := newTestEnv(storage.KindMock)
	env.segments.add(&models.Segment{ID: "seg1", Transcripts: strPtr("text one")})
	env.segments.add(&models.Segment{ID: "seg2", Transcripts: strPtr("text two")})

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	env.summaries.hook = func() {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
	}

	j1 := env.jobs.addJob("seg1", models.JobTypeSummary)
	j2 := env.jobs.addJob("seg2", models.JobTypeSummary)

	env.worker.Start()

	// Stop while the first job is in flight; it must still finish.
	<-started
	env.worker.Stop()
	close(release)
	env.worker.Wait()

	assert.False(t, env.worker.IsActive())
	assert.Equal(t, models.JobStatusCompleted, env.jobs.job(j1.ID).Status)
	assert.Equal(t, models.JobStatusPending, env.jobs.job(j2.ID).Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWorkerRestartsAfterStop(t *testing.T) {
	env := newTestEnv(storage.KindMock)
	env.segments.add(&models.Segment{ID: "seg1", Transcripts: strPtr("text")})

	env.worker.Start()
	env.worker.Stop()
	env.worker.Wait()
	require.False(t, env.worker.IsActive())

	job := env.jobs.addJob("seg1", models.JobTypeSummary)
	env.worker.Start()
	defer func() {
		env.worker.Stop()
		env.worker.Wait()
	}()

	require.Eventually(t, func() bool {
		return env.jobs.job(job.ID).Status == models.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerBacksOffAfterFetchError(t *testing.T) {
	env := newTestEnv(storage.KindMock)
	env.segments.add(&models.Segment{ID: "seg1", Transcripts: strPtr("text")})
	env.jobs.fetchErrs = []error{errors.New("database hiccup")}

	job := env.jobs.addJob("seg1", models.JobTypeSummary)

	env.worker.Start()
	defer func() {
		env.worker.Stop()
		env.worker.Wait()
	}()

	// The first fetch fails; the loop must back off and recover rather
	// than exit.
	require.Eventually(t, func() bool {
		return env.jobs.job(job.ID).Status == models.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, env.worker.IsActive())
}

func TestWorkerSurvivesPanicInCycle(t *testing.T) {
	env := newTestEnv(storage.KindMock)
	env.segments.add(&models.Segment{ID: "seg1", Transcripts: strPtr("text")})

	var fetches int32
	env.jobs.fetchHook = func() {
		if atomic.AddInt32(&fetches, 1) == 1 {
			panic("boom in fetch")
		}
	}

	job := env.jobs.addJob("seg1", models.JobTypeSummary)

	env.worker.Start()
	defer func() {
		env.worker.Stop()
		env.worker.Wait()
	}()

	require.Eventually(t, func() bool {
		return env.jobs.job(job.ID).Status == models.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSharedHandle(t *testing.T) {
	resetShared()
	defer resetShared()

	require.Nil(t, Shared())

	first := newTestEnv(storage.KindMock).worker
	second := newTestEnv(storage.KindMock).worker

	installed := SharedInit(first)
	assert.Same(t, first, installed)
	assert.Same(t, first, Shared())

	// First install wins.
	assert.Same(t, first, SharedInit(second))
	assert.Same(t, first, Shared())
}
