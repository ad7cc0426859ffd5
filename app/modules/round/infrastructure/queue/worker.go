package roundqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	"github.com/RelicDragon/bandeja-sub007/pkg/eventbus"
	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// RecalculateRoundWorker runs RecalculateRound for queued jobs and publishes the result.
type RecalculateRoundWorker struct {
	river.WorkerDefaults[RecalculateRoundJob]

	service   roundservice.Service
	publisher message.Publisher
	logger    *slog.Logger
	metrics   metrics.OperationMetrics
}

// NewRecalculateRoundWorker creates a worker bound to the round service.
func NewRecalculateRoundWorker(service roundservice.Service, publisher message.Publisher, logger *slog.Logger, m metrics.OperationMetrics) *RecalculateRoundWorker {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &RecalculateRoundWorker{
		service:   service,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// Work recalculates the round. Infrastructure errors are returned so river retries the job;
// a missing round is reported once and not retried.
func (w *RecalculateRoundWorker) Work(ctx context.Context, job *river.Job[RecalculateRoundJob]) error {
	start := time.Now()
	w.metrics.RecordOperationAttempt(ctx, "recalculate_round_job", "river")
	defer func() {
		w.metrics.RecordOperationDuration(ctx, "recalculate_round_job", "river", time.Since(start))
	}()

	ctx, _ = attr.EnsureCorrelationID(ctx)
	args := job.Args
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
		attr.RoundID("round_id", args.RoundID),
	)

	result, err := w.service.RecalculateRound(ctx, args.GameID, args.RoundID, args.Strategy)
	if err != nil {
		logger.ErrorContext(ctx, "Recalculation job failed", attr.Error(err))
		w.metrics.RecordOperationFailure(ctx, "recalculate_round_job", "river")
		return fmt.Errorf("recalculate round %s: %w", args.RoundID, err)
	}

	var (
		topic   string
		payload any
	)
	if result.IsFailure() {
		topic = roundevents.RoundOutcomesFailedV1
		payload = &roundevents.RoundOutcomesFailedPayloadV1{
			GameID:  args.GameID,
			RoundID: args.RoundID,
			Reason:  (*result.Failure).Error(),
		}
	} else {
		topic = roundevents.RoundOutcomesAppliedV1
		payload = roundservice.AppliedPayload(*result.Success)
	}

	if err := eventbus.PublishJSON(ctx, w.publisher, topic, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish recalculation result", attr.String("topic", topic), attr.Error(err))
		w.metrics.RecordOperationFailure(ctx, "recalculate_round_job", "river")
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	w.metrics.RecordOperationSuccess(ctx, "recalculate_round_job", "river")
	logger.InfoContext(ctx, "Recalculation job completed", attr.String("topic", topic))
	return nil
}
