package leaderboardhandlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	leaderboardservice "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/application"
	"github.com/RelicDragon/bandeja-sub007/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
)

// maxActivityUsers bounds the userIds list of one activity request.
const maxActivityUsers = 500

// HandleHTTPLeaderboard serves GET /api/leaderboard.
func (h *LeaderboardHandlers) HandleHTTPLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleHTTPLeaderboard")
	defer span.End()

	q := r.URL.Query()
	result, err := h.service.GetLeaderboard(ctx, leaderboardservice.LeaderboardQuery{
		Type:       q.Get("type"),
		Scope:      q.Get("scope"),
		CityID:     q.Get("cityId"),
		TimePeriod: q.Get("timePeriod"),
		ViewerID:   ViewerFromContext(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Leaderboard request failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	if result.IsFailure() {
		status := http.StatusBadRequest
		if errors.Is(*result.Failure, leaderboardservice.ErrViewerNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, (*result.Failure).Error())
		return
	}

	writeJSON(w, http.StatusOK, *result.Success)
}

// HandleHTTPCityRanks serves GET /api/leaderboard/cities/{cityID}/ranks.
func (h *LeaderboardHandlers) HandleHTTPCityRanks(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleHTTPCityRanks")
	defer span.End()

	cityID := chi.URLParam(r, "cityID")
	ranks, err := h.service.GetCityRanks(ctx, cityID)
	if err != nil {
		if leaderboardservice.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "City ranks request failed", attr.String("city_id", cityID), attr.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load city ranks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cityId": cityID, "ranks": ranks})
}

// HandleHTTPActivity serves GET /api/leaderboard/activity?userIds=a,b&cityId=&days=.
func (h *LeaderboardHandlers) HandleHTTPActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardHandlers.HandleHTTPActivity")
	defer span.End()

	q := r.URL.Query()
	userIDs := splitIDs(q.Get("userIds"))
	if len(userIDs) == 0 {
		writeError(w, http.StatusBadRequest, "userIds is required")
		return
	}
	if len(userIDs) > maxActivityUsers {
		writeError(w, http.StatusBadRequest, "too many userIds")
		return
	}

	days := 0
	if raw := q.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = parsed
	}

	counts, err := h.service.CountRecentParticipation(ctx, userIDs, q.Get("cityId"), days)
	if err != nil {
		h.logger.ErrorContext(ctx, "Activity request failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to count activity")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func splitIDs(raw string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
