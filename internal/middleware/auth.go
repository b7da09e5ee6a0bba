package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskforge/backend/api/handler"
	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/internal/token"
	"github.com/taskforge/backend/pkg/httpcontext"
	"github.com/taskforge/backend/repository"
)

// Auth verifies the access token carried in the accessToken cookie or the
// Authorization bearer header, loads the referenced user and attaches it to
// the request for downstream handlers. Anything short of a valid token plus
// an existing user is a 401.
func Auth(tokens *token.Issuer, users repository.UserRepository, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing access token")
				return
			}

			userID, err := tokens.Verify(tokenString, token.KindAccess)
			if err != nil {
				logger.Warn("invalid access token", zap.Error(err))
				unauthorized(ctx, "invalid or expired token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			user, err := users.GetByID(stdCtx, userID)
			cancel()
			if err != nil {
				logger.Warn("token references unknown user", zap.String("user_id", userID), zap.Error(err))
				unauthorized(ctx, "invalid or expired token")
				return
			}

			ctx.SetUserValue(apiHandler.UserCtxKey, user)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	if cookie := string(ctx.Request.Header.Cookie("accessToken")); cookie != "" {
		return cookie
	}
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	writeEnvelope(ctx, transport.NewFailure(http.StatusUnauthorized, message, nil))
}

func writeEnvelope(ctx *fasthttp.RequestCtx, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(payload.StatusCode)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
