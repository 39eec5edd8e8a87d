package db

import (
	"context"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

const queryStartKey = "cartcore:query_start"

type queryStatsKey struct{}

// QueryStats accumulates the statements executed on behalf of one request.
type QueryStats struct {
	count    atomic.Int64
	duration atomic.Int64
}

func (s *QueryStats) Count() int64 {
	if s == nil {
		return 0
	}
	return s.count.Load()
}

func (s *QueryStats) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return time.Duration(s.duration.Load())
}

func (s *QueryStats) record(elapsed time.Duration) {
	s.count.Add(1)
	s.duration.Add(int64(elapsed))
}

// WithQueryStats returns a context that collects query statistics
func WithQueryStats(ctx context.Context) (context.Context, *QueryStats) {
	stats := &QueryStats{}
	return context.WithValue(ctx, queryStatsKey{}, stats), stats
}

// QueryStatsFromContext returns the collector attached to ctx, or nil
func QueryStatsFromContext(ctx context.Context) *QueryStats {
	if ctx == nil {
		return nil
	}
	stats, _ := ctx.Value(queryStatsKey{}).(*QueryStats)
	return stats
}

// QueryObserver receives the duration of every executed statement.
type QueryObserver interface {
	ObserveQuery(operation string, elapsed time.Duration)
}

// QueryCounter is a gorm plugin that counts and times statements. Counts land
// in the QueryStats carried by the statement context.
type QueryCounter struct {
	observer QueryObserver
}

func NewQueryCounter(observer QueryObserver) *QueryCounter {
	return &QueryCounter{observer: observer}
}

func (q *QueryCounter) Name() string {
	return "cartcore:query_counter"
}

func (q *QueryCounter) Initialize(conn *gorm.DB) error {
	cb := conn.Callback()
	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before("cartcore:before_"+h.operation, q.before); err != nil {
			return err
		}
		if err := h.after("cartcore:after_"+h.operation, q.after(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

func (q *QueryCounter) before(tx *gorm.DB) {
	tx.InstanceSet(queryStartKey, time.Now())
}

func (q *QueryCounter) after(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)

		if stats := QueryStatsFromContext(tx.Statement.Context); stats != nil {
			stats.record(elapsed)
		}
		if q.observer != nil {
			q.observer.ObserveQuery(operation, elapsed)
		}
	}
}
