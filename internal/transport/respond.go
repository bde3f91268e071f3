package transport

import (
	"errors"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

// respondWithServiceError maps a service or catalog error onto the error
// envelope. notice, when given, is attached to the details.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notice *catalog.Notice) {
	details := map[string]interface{}{}
	if notice != nil {
		details["notice"] = notice
	}

	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		details["validation_errors"] = []middleware.ValidationError{{Field: verr.Field, Message: verr.Message}}
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrProfileNotFound):
		middleware.RespondWithErrorDetails(w, http.StatusNotFound, notFoundMessage(err), nilIfEmpty(details))
	case errors.Is(err, repository.ErrGatewayUnavailable):
		logger.Warn("Catalog gateway unavailable", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusServiceUnavailable, "service temporarily unavailable", nilIfEmpty(details))
	default:
		logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, "internal server error", nilIfEmpty(details))
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return "product not found"
	case errors.Is(err, repository.ErrCategoryNotFound):
		return "category not found"
	default:
		return "user not found"
	}
}

func nilIfEmpty(details map[string]interface{}) map[string]interface{} {
	if len(details) == 0 {
		return nil
	}
	return details
}

// checkURLs validates optional URL fields. Blank values are allowed and
// clear the field.
func checkURLs(fields map[string]*string) []middleware.ValidationError {
	var out []middleware.ValidationError
	for _, name := range []string{"image_url", "purchase_link"} {
		v, ok := fields[name]
		if !ok || v == nil || *v == "" {
			continue
		}
		if err := middleware.ValidateVar(*v, "url"); err != nil {
			out = append(out, middleware.ValidationError{Field: name, Message: "Invalid URL"})
		}
	}
	return out
}
