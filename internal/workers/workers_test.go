package workers

import (
	"context"
	"testing"
	"time"

	"finance-tracker-backend/internal/features/bot/models"
	"finance-tracker-backend/internal/features/bot/repository/memory"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calledWith time.Time
	expired    int64
	err        error
}

func (f *fakeExpirer) ExpireSubscriptions(_ context.Context, now time.Time) (int64, error) {
	f.calledWith = now
	return f.expired, f.err
}

func TestSubscriptionExpiryJob(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	expirer := &fakeExpirer{expired: 2}
	job := NewSubscriptionExpiryJob(expirer, zerolog.Nop())
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now, expirer.calledWith)

	expirer.err = assert.AnError
	assert.ErrorIs(t, job.Run(context.Background()), assert.AnError)
}

func TestSessionPurgeJob(t *testing.T) {
	store := memory.NewSessionStore(time.Minute)
	require.NoError(t, store.Save(context.Background(), 1, &models.Session{State: models.StateAwaitingEmail}))

	job := NewSessionPurgeJob(store, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, store.Len())

	job.now = func() time.Time { return time.Now().Add(time.Hour) }
	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, store.Len())
}

type countingJob struct {
	runs int
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return assert.AnError
	}
	j.runs++
	return nil
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(time.Second, zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, s.AddJob("@every 1h", job))
	assert.Error(t, s.AddJob("not a schedule", job))

	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	s.Start()
	s.Stop()
}
