package metrics

import (
	"context"
	"time"
)

// Noop discards every measurement.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (*Noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (*Noop) RecordOperationFailure(context.Context, string, string)                 {}
func (*Noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*Noop) RecordOutcomesUpserted(context.Context, int)                            {}
func (*Noop) RecordWinnersResolved(context.Context, string, int)                     {}
func (*Noop) RecordCacheHit(context.Context, string)                                 {}
func (*Noop) RecordCacheMiss(context.Context, string)                                {}

var (
	_ RoundMetrics       = (*Noop)(nil)
	_ LeaderboardMetrics = (*Noop)(nil)
)
