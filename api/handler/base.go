package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/pkg/httpcontext"
	"github.com/taskforge/backend/pkg/validate"
)

// UserCtxKey is the fasthttp user value under which the auth middleware
// stores the resolved user.
const UserCtxKey = "auth_user"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(payload.StatusCode)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}, message string) {
	h.respondJSON(ctx, transport.NewSuccess(status, data, message))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status := mapError(err)
	message := "internal server error"
	var violations []domain.FieldViolation
	if dErr, ok := domain.AsDomainError(err); ok {
		message = dErr.Message
		violations = dErr.Violations
	} else {
		h.logger.Error("unclassified handler error", zap.Error(err))
	}
	h.respondJSON(ctx, transport.NewFailure(status, message, violations))
}

// decode unmarshals the request body into dst and runs its declarative
// validation rules. On failure it writes the error envelope and reports false;
// the caller must not proceed.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.respondError(ctx, err)
		return false
	}
	return true
}

// currentUser returns the user attached by the auth middleware, writing a 401
// envelope when the request slipped past it unauthenticated.
func (h baseHandler) currentUser(ctx *fasthttp.RequestCtx) *domain.User {
	user, _ := ctx.UserValue(UserCtxKey).(*domain.User)
	if user == nil {
		h.respondError(ctx, domain.ErrUnauthorized)
	}
	return user
}

func mapError(err error) int {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden
	case domain.IsDomainError(err, domain.ErrCodeValidation):
		return http.StatusUnprocessableEntity
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict
	case domain.IsDomainError(err, domain.ErrCodeRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
