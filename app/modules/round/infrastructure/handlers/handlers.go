package roundhandlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	roundservice "github.com/RelicDragon/bandeja-sub007/app/modules/round/application"
	rounddomain "github.com/RelicDragon/bandeja-sub007/app/modules/round/domain"
	"github.com/RelicDragon/bandeja-sub007/pkg/events/roundevents"
	"github.com/RelicDragon/bandeja-sub007/pkg/handlerwrapper"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// RoundHandlers implements the Handlers interface.
type RoundHandlers struct {
	service   roundservice.Service
	scheduler RecalculationScheduler
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewRoundHandlers creates a new RoundHandlers instance. A nil scheduler makes score corrections
// recalculate inline.
func NewRoundHandlers(
	service roundservice.Service,
	scheduler RecalculationScheduler,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &RoundHandlers{
		service:   service,
		scheduler: scheduler,
		logger:    logger,
		tracer:    tracer,
	}
}

// HandleRoundOutcomesRequested runs RecalculateRound and reports applied or failed.
func (h *RoundHandlers) HandleRoundOutcomesRequested(ctx context.Context, payload *roundevents.RoundOutcomesRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RoundHandlers.HandleRoundOutcomesRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Round outcomes requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", payload.GameID),
		attr.RoundID("round_id", payload.RoundID),
		attr.String("strategy", payload.Strategy),
	)

	return h.recalculate(ctx, payload.GameID, payload.RoundID, h.parseStrategy(ctx, payload.Strategy))
}

// parseStrategy falls back to the default strategy, warning when the wire value was set but unknown.
func (h *RoundHandlers) parseStrategy(ctx context.Context, raw string) rounddomain.WinnerStrategy {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized != "" && !rounddomain.WinnerStrategy(normalized).Known() {
		h.logger.WarnContext(ctx, "Unknown winner strategy, using default",
			attr.ExtractCorrelationID(ctx),
			attr.String("strategy", raw),
			attr.String("default", string(rounddomain.DefaultWinnerStrategy)),
		)
	}
	return rounddomain.ParseWinnerStrategy(raw)
}

func (h *RoundHandlers) recalculate(ctx context.Context, gameID, roundID string, strategy rounddomain.WinnerStrategy) ([]handlerwrapper.Result, error) {
	result, err := h.service.RecalculateRound(ctx, gameID, roundID, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate round %s: %w", roundID, err)
	}

	if result.IsFailure() {
		return []handlerwrapper.Result{{
			Topic: roundevents.RoundOutcomesFailedV1,
			Payload: &roundevents.RoundOutcomesFailedPayloadV1{
				GameID:  gameID,
				RoundID: roundID,
				Reason:  (*result.Failure).Error(),
			},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   roundevents.RoundOutcomesAppliedV1,
		Payload: roundservice.AppliedPayload(*result.Success),
	}}, nil
}

// HandleRoundScoresCorrected hands the recalculation to the queue so bursts of edits collapse.
func (h *RoundHandlers) HandleRoundScoresCorrected(ctx context.Context, payload *roundevents.RoundScoresCorrectedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RoundHandlers.HandleRoundScoresCorrected")
	defer span.End()

	strategy := h.parseStrategy(ctx, payload.Strategy)

	if h.scheduler == nil {
		h.logger.WarnContext(ctx, "No recalculation queue configured, recalculating inline",
			attr.ExtractCorrelationID(ctx),
			attr.RoundID("round_id", payload.RoundID),
		)
		return h.recalculate(ctx, payload.GameID, payload.RoundID, strategy)
	}

	if err := h.scheduler.ScheduleRecalculation(ctx, payload.GameID, payload.RoundID, strategy); err != nil {
		return nil, fmt.Errorf("failed to schedule recalculation for round %s: %w", payload.RoundID, err)
	}

	h.logger.InfoContext(ctx, "Round recalculation scheduled",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", payload.GameID),
		attr.RoundID("round_id", payload.RoundID),
	)
	return nil, nil
}

// HandleRoundWinnerRequested resolves winners without persisting anything.
func (h *RoundHandlers) HandleRoundWinnerRequested(ctx context.Context, payload *roundevents.RoundWinnerRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "RoundHandlers.HandleRoundWinnerRequested")
	defer span.End()

	strategy := h.parseStrategy(ctx, payload.Strategy)

	result, err := h.service.ResolveRoundWinner(ctx, payload.RoundID, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve winner of round %s: %w", payload.RoundID, err)
	}

	if result.IsFailure() {
		h.logger.WarnContext(ctx, "Winner requested for unknown round",
			attr.ExtractCorrelationID(ctx),
			attr.RoundID("round_id", payload.RoundID),
			attr.Error(*result.Failure),
		)
		return []handlerwrapper.Result{{
			Topic: roundevents.RoundWinnerResolvedV1,
			Payload: &roundevents.RoundWinnerResolvedPayloadV1{
				RoundID:       payload.RoundID,
				Strategy:      strategy.String(),
				WinnerTeamIDs: []string{},
				TeamScores:    []roundevents.TeamScoreV1{},
				NotFound:      true,
			},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   roundevents.RoundWinnerResolvedV1,
		Payload: roundservice.WinnerPayload(*result.Success),
	}}, nil
}
