// Package health reports liveness and readiness for the cart service.
package health

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Reporter backs the /health endpoints. The broken flag is a one-way
// chaos hook for testing; once set it can only be cleared by restarting
// the process.
type Reporter struct {
	db     *sql.DB
	broken atomic.Bool
}

func NewReporter(db *sql.DB) *Reporter { return &Reporter{db: db} }

// MarkBroken forces both checks to report DOWN for the remaining process
// lifetime.
func (r *Reporter) MarkBroken() {
	r.broken.Store(true)
	log.Warn().Msg("broken flag set, health checks will report DOWN until restart")
}

// Live reports whether the data store can be reached.
func (r *Reporter) Live(ctx context.Context) bool {
	if r.broken.Load() {
		return false
	}
	if err := r.db.PingContext(ctx); err != nil {
		log.Error().Err(err).Msg("liveness ping failed")
		return false
	}
	return true
}

// Ready is a process-level check only.
func (r *Reporter) Ready() bool { return !r.broken.Load() }
