package handlers

import (
	"errors"
	"net/http"
	"taskboard/internal/logger"
	"taskboard/internal/service"

	"go.uber.org/zap"
)

const msgInternal = "internal error"

// handleServiceError writes the response for any error coming out of the service layer.
// Store failures are logged and hidden behind a generic 500.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode),
			zap.Any("details", businessErr.Details))

		responseWithError(w, statusCode, businessErr.Message)
		return
	}

	logger.Error("HTTP: service error", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, msgInternal)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeAlreadyCompleted:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
