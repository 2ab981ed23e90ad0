package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/retail-backoffice/internal/api/middleware"
	"github.com/example/retail-backoffice/internal/auth"
	"go.uber.org/zap"
)

const refreshCookiePath = "/auth/refresh"

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authenticator *auth.Authenticator
	jwtService    *auth.JWTService
	logger        *zap.Logger
}

func NewAuthHandlers(authenticator *auth.Authenticator, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		authenticator: authenticator,
		jwtService:    jwtService,
		logger:        logger.Named("auth"),
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries the access token for API clients that do not keep cookies
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

// OperatorResponse represents the authenticated operator
type OperatorResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login checks the operator credentials and issues an access/refresh token pair
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.authenticator.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("login rejected", zap.String("username", req.Username), zap.String("remote_addr", r.RemoteAddr))
		respondJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	resp, err := h.issueTokens(w, r, req.Username, role)
	if err != nil {
		h.logger.Error("failed to issue tokens", zap.Error(err))
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("operator logged in", zap.String("username", req.Username))
	respondJSON(w, http.StatusOK, resp)
}

// Refresh exchanges a valid refresh token cookie for a new token pair
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		msg := "Invalid refresh token"
		if errors.Is(err, auth.ErrExpiredToken) {
			msg = "Refresh token expired"
		}
		respondJSONError(w, msg, http.StatusUnauthorized)
		return
	}

	resp, err := h.issueTokens(w, r, claims.Username, claims.Role)
	if err != nil {
		h.logger.Error("failed to issue tokens", zap.Error(err))
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// Logout clears the auth cookies; tokens are stateless and simply expire
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Me returns the current authenticated operator
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetOperatorFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, OperatorResponse{
		Username: claims.Username,
		Role:     claims.Role,
	})
}

func (h *AuthHandlers) issueTokens(w http.ResponseWriter, r *http.Request, username, role string) (*TokenResponse, error) {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(username, role)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(username, role)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     refreshCookiePath,
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   accessExpiry,
		Username:    username,
		Role:        role,
	}, nil
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
}
