package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productgraph/internal/domain/products"
	"github.com/yungbote/productgraph/internal/http/response"
	"github.com/yungbote/productgraph/internal/importers"
	"github.com/yungbote/productgraph/internal/platform/apierr"
	"github.com/yungbote/productgraph/internal/platform/ctxutil"
	"github.com/yungbote/productgraph/internal/platform/logger"
)

// errorStatus maps service errors onto HTTP status and error code. An
// *apierr.Error anywhere in the chain wins.
func errorStatus(err error) (int, string) {
	if status, code, ok := apierr.StatusOf(err); ok {
		return status, code
	}
	var (
		notFound    *products.NotFoundError
		concurrency *products.ConcurrencyConflictError
		identity    *products.IdentityConflictError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, importers.ErrUnknownImporter):
		return http.StatusNotFound, "unknown_importer"
	case errors.As(err, &concurrency):
		return http.StatusConflict, "concurrency_conflict"
	case errors.As(err, &identity):
		return http.StatusConflict, "identity_conflict"
	case errors.Is(err, products.ErrInvalidGraph):
		return http.StatusBadRequest, "invalid_graph"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respondServiceError(c *gin.Context, log *logger.Logger, op string, err error) {
	status, code := errorStatus(err)
	if log != nil && status >= http.StatusInternalServerError {
		fields := append([]any{"op", op, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		log.Error("request failed", fields...)
	}
	response.RespondError(c, status, code, err)
}
