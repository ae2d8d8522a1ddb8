package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SubscriptionExpirer is implemented by the account repository.
type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionExpiryJob turns off subscriptions that were cancelled and whose
// paid period has ended.
type SubscriptionExpiryJob struct {
	accounts SubscriptionExpirer
	log      zerolog.Logger
	now      func() time.Time
}

func NewSubscriptionExpiryJob(accounts SubscriptionExpirer, log zerolog.Logger) *SubscriptionExpiryJob {
	return &SubscriptionExpiryJob{accounts: accounts, log: log, now: time.Now}
}

func (j *SubscriptionExpiryJob) Name() string { return "subscription_expiry" }

func (j *SubscriptionExpiryJob) Run(ctx context.Context) error {
	expired, err := j.accounts.ExpireSubscriptions(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	if expired > 0 {
		j.log.Info().Int64("expired", expired).Msg("Subscriptions expired")
	}
	return nil
}

// SessionPurger is implemented by the in-memory bot session store.
type SessionPurger interface {
	Purge(now time.Time) int
}

// SessionPurgeJob drops abandoned bot dialogues after their TTL.
type SessionPurgeJob struct {
	sessions SessionPurger
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionPurgeJob(sessions SessionPurger, log zerolog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{sessions: sessions, log: log, now: time.Now}
}

func (j *SessionPurgeJob) Name() string { return "session_purge" }

func (j *SessionPurgeJob) Run(_ context.Context) error {
	if removed := j.sessions.Purge(j.now()); removed > 0 {
		j.log.Info().Int("removed", removed).Msg("Expired bot sessions purged")
	}
	return nil
}
