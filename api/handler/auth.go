package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskforge/backend/api/transport"
	"github.com/taskforge/backend/domain"
	"github.com/taskforge/backend/pkg/httpcontext"
	"github.com/taskforge/backend/repository"
	authUC "github.com/taskforge/backend/usecase/auth"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

type AuthHandler struct {
	baseHandler
	uc            *authUC.UseCase
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, accessTTL, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		baseHandler:   newBaseHandler(adapter, logger),
		uc:            uc,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// @Summary Register a new user
// @Tags auth
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(ctx *fasthttp.RequestCtx) {
	var req transport.SignupRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Signup(stdCtx, req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{"user": user}, "user registered successfully")
}

// @Summary Authenticate and open a session
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, pair, err := h.uc.Login(stdCtx, req.Identifier, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setAuthCookies(ctx, pair)
	h.respondSuccess(ctx, http.StatusOK, transport.AuthPayload{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "user logged in successfully")
}

// @Summary Rotate the token pair
// @Tags auth
// @Router /api/v1/auth/refresh-token [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	var req transport.RefreshRequest
	_ = json.Unmarshal(ctx.PostBody(), &req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = string(ctx.Request.Header.Cookie(refreshCookie))
	}
	if refreshToken == "" {
		h.respondError(ctx, domain.ErrInvalidToken)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, pair, err := h.uc.Refresh(stdCtx, refreshToken)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.setAuthCookies(ctx, pair)
	h.respondSuccess(ctx, http.StatusOK, transport.AuthPayload{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "token refreshed successfully")
}

// @Summary Close the session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, user.ID); err != nil {
		h.respondError(ctx, err)
		return
	}

	h.clearAuthCookies(ctx)
	h.respondSuccess(ctx, http.StatusOK, nil, "user logged out successfully")
}

// @Summary Fetch the authenticated user
// @Tags auth
// @Router /api/v1/auth/current-user [get]
func (h *AuthHandler) CurrentUser(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user": user}, "current user fetched successfully")
}

// @Summary Update profile fields
// @Tags auth
// @Router /api/v1/auth/update-user [put]
func (h *AuthHandler) UpdateUser(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.UpdateUserRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProfile(stdCtx, user.ID, repository.UserUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{"user": updated}, "user updated successfully")
}

// @Summary Rotate the password
// @Tags auth
// @Router /api/v1/auth/change-password [put]
func (h *AuthHandler) ChangePassword(ctx *fasthttp.RequestCtx) {
	user := h.currentUser(ctx)
	if user == nil {
		return
	}

	var req transport.ChangePasswordRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.ChangePassword(stdCtx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil, "password changed successfully")
}

func (h *AuthHandler) setAuthCookies(ctx *fasthttp.RequestCtx, pair authUC.TokenPair) {
	h.setCookie(ctx, accessCookie, pair.AccessToken, h.accessTTL)
	h.setCookie(ctx, refreshCookie, pair.RefreshToken, h.refreshTTL)
}

func (h *AuthHandler) clearAuthCookies(ctx *fasthttp.RequestCtx) {
	h.setCookie(ctx, accessCookie, "", -time.Hour)
	h.setCookie(ctx, refreshCookie, "", -time.Hour)
}

func (h *AuthHandler) setCookie(ctx *fasthttp.RequestCtx, name, value string, ttl time.Duration) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(name)
	cookie.SetValue(value)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.secureCookies)
	cookie.SetSameSite(fasthttp.CookieSameSiteStrictMode)
	cookie.SetExpire(time.Now().Add(ttl))
	ctx.Response.Header.SetCookie(cookie)
}
