// Package distlock coordinates background jobs across engine instances so
// that a scheduled run, like the periodic profile refresh, happens on one
// host at a time. The lock backend follows the configured store: Redis when
// available, PostgreSQL advisory locks otherwise.
package distlock

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock guards one named job. A lock instance belongs to a single
// goroutine; concurrent holders need their own instances.
type DistLock interface {
	// Acquire attempts the lock without blocking. True means this instance
	// owns the job until Release or expiry.
	Acquire(ctx context.Context) (bool, error)
	// Release gives the lock up if this instance still owns it.
	Release(ctx context.Context) error
}

// NewLock picks the lock backend matching the configured store. Redis wins
// when a client is present since its TTL survives a crashed holder; the
// advisory-lock fallback gets the same crash-safety from session scoping.
func NewLock(redisClient *redis.Client, db *sql.DB, job string, ttl time.Duration) DistLock {
	if redisClient != nil {
		return NewRedisLock(redisClient, job, ttl)
	}
	return NewPGAdvisoryLock(db, job)
}

// PGAdvisoryLock serializes a job through pg_try_advisory_lock. The lock
// rides the database session, so a dropped connection releases it.
type PGAdvisoryLock struct {
	db    *sql.DB
	jobID int64
}

// NewPGAdvisoryLock derives a deterministic advisory lock ID from the job
// name so every instance contends on the same lock.
func NewPGAdvisoryLock(db *sql.DB, job string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(job))
	return &PGAdvisoryLock{
		db:    db,
		jobID: int64(h.Sum64()),
	}
}

// Acquire attempts the advisory lock. Non-blocking.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.jobID).Scan(&acquired)
	return acquired, err
}

// Release unlocks the advisory lock.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.jobID)
	return err
}
