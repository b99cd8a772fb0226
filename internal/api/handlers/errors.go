package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/store"

	"github.com/gin-gonic/gin"
)

var errInvalidRequest = errors.New("invalid request")

// errorDetail maps domain errors to an HTTP status and error code.
func errorDetail(err error) (int, models.ErrorDetail) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    "INVALID_SITE",
			Message: err.Error(),
			Details: map[string]interface{}{"field": verr.Field},
		}
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()}
	case errors.Is(err, agriculture.ErrUnsupportedCrop):
		return http.StatusBadRequest, models.ErrorDetail{
			Code:    "UNSUPPORTED_CROP",
			Message: err.Error(),
			Details: map[string]interface{}{"supported": agriculture.SupportedCrops()},
		}
	case errors.Is(err, economics.ErrZeroExport):
		return http.StatusUnprocessableEntity, models.ErrorDetail{Code: "ZERO_EXPORT", Message: err.Error()}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, errUnknownSite):
		return http.StatusNotFound, models.ErrorDetail{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, errNoArchive):
		return http.StatusServiceUnavailable, models.ErrorDetail{Code: "ARCHIVE_DISABLED", Message: err.Error()}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, models.ErrorDetail{Code: "CANCELLED", Message: err.Error()}
	default:
		return http.StatusInternalServerError, models.ErrorDetail{Code: "EVALUATION_ERROR", Message: err.Error()}
	}
}

func writeError(c *gin.Context, err error) {
	status, detail := errorDetail(err)
	if status >= http.StatusInternalServerError {
		log.Printf("API: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
