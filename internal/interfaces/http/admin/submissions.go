package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/common"
)

type submissionListResponse struct {
	Submissions []common.SubmissionResponse `json:"submissions"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) submissionListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), common.StoreTimeout)
		defer cancel()

		subs, err := h.reviews.List(ctx)
		if err != nil {
			h.logger.Error("submission list fetch failed", zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Failed to load submissions")
			return
		}

		items := make([]common.SubmissionResponse, 0, len(subs))
		for _, sub := range subs {
			items = append(items, common.NewSubmissionResponse(sub))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, submissionListResponse{Submissions: items})
	}
}

func (h *Handler) submissionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Submission id is required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, common.MaxJSONRequestBody)
		var req statusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.StoreTimeout)
		defer cancel()

		updated, err := h.reviews.UpdateStatus(ctx, id, req.Status)
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			common.WriteError(h.logger, w, http.StatusBadRequest, domain.UserMessage(err))
			return
		case errors.Is(err, domain.ErrNotFound):
			common.WriteError(h.logger, w, http.StatusNotFound, domain.UserMessage(err))
			return
		case err != nil:
			h.logger.Error("submission status update failed", zap.String("id", id), zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Failed to update submission")
			return
		}

		h.logger.Info("submission status updated", zap.String("id", id), zap.String("status", updated.Status.String()))
		common.WriteJSON(h.logger, w, http.StatusOK, common.NewSubmissionResponse(*updated))
	}
}
