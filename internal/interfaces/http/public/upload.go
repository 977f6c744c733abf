package public

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
	"github.com/sngm3741/pcb-intake-services/api/internal/interfaces/http/common"
	publicapp "github.com/sngm3741/pcb-intake-services/api/internal/public/application"
)

const multipartMemory = 8 << 20

type uploadResponse struct {
	Success    bool                       `json:"success"`
	Message    string                     `json:"message,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Submission *common.SubmissionResponse `json:"submission,omitempty"`
}

func (h *Handler) uploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				common.WriteJSON(h.logger, w, http.StatusRequestEntityTooLarge, uploadResponse{Error: "File too large"})
				return
			}
			common.WriteJSON(h.logger, w, http.StatusBadRequest, uploadResponse{Error: "Invalid form data"})
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields := domain.ContactFields{
			Name:  r.FormValue("name"),
			Email: r.FormValue("email"),
			Phone: r.FormValue("phone"),
			Notes: r.FormValue("notes"),
		}

		var upload *publicapp.Upload
		file, header, err := r.FormFile("file")
		switch {
		case err == nil:
			defer file.Close()
			upload = &publicapp.Upload{
				FileName:    header.Filename,
				ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
				Size:        header.Size,
				Body:        file,
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			common.WriteJSON(h.logger, w, http.StatusBadRequest, uploadResponse{Error: "Invalid form data"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.UploadTimeout)
		defer cancel()

		sub, err := h.intake.Submit(ctx, fields, upload)
		if err != nil {
			status := uploadStatus(err)
			if status >= http.StatusInternalServerError {
				h.logger.Error("upload failed", zap.Error(err))
			}
			common.WriteJSON(h.logger, w, status, uploadResponse{Error: domain.UserMessage(err)})
			return
		}

		resp := common.NewSubmissionResponse(*sub)
		common.WriteJSON(h.logger, w, http.StatusOK, uploadResponse{
			Success:    true,
			Message:    "File uploaded successfully",
			Submission: &resp,
		})
	}
}

func uploadStatus(err error) int {
	var validation *domain.ValidationError
	if errors.As(err, &validation) || domain.IsFileError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
