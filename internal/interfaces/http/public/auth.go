package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/common"
)

type loginRequest struct {
	Secret   string `json:"secret"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, common.MaxJSONRequestBody)
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body")
			return
		}
		secret := req.Secret
		if secret == "" {
			secret = req.Password
		}

		cred, err := h.authenticator.Authenticate(secret)
		if err != nil {
			var validation *domain.ValidationError
			switch {
			case errors.As(err, &validation):
				common.WriteError(h.logger, w, http.StatusBadRequest, validation.Error())
			case errors.Is(err, domain.ErrInvalidCredential):
				common.WriteError(h.logger, w, http.StatusUnauthorized, domain.UserMessage(err))
			case errors.Is(err, domain.ErrServerMisconfigured):
				h.logger.Error("admin login unavailable", zap.Error(err))
				common.WriteError(h.logger, w, http.StatusInternalServerError, domain.UserMessage(err))
			default:
				h.logger.Error("admin login failed", zap.Error(err))
				common.WriteError(h.logger, w, http.StatusInternalServerError, "Server error")
			}
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, loginResponse{
			Token:     cred.Token,
			TokenType: "Bearer",
			ExpiresAt: cred.ExpiresAt,
		})
	}
}

func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := common.PrincipalFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Failed to read credentials")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status":    "ok",
			"role":      principal.Role,
			"expiresAt": principal.ExpiresAt,
		})
	}
}
