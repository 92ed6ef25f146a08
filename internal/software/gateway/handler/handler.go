package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"seryvo/internal/domain/user"
	"seryvo/internal/general/jwt"
	"seryvo/internal/general/logger"
	"seryvo/internal/general/websocket"
	"seryvo/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayHTTPHandler adapts HTTP requests to the GatewayService.
type GatewayHTTPHandler struct {
	svc    ports.GatewayService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *websocket.DriverHub
}

// NewGatewayHTTPHandler wires an HTTP handler around the GatewayService.
func NewGatewayHTTPHandler(
	svc ports.GatewayService,
	logger *logger.Logger,
	auth *jwt.Manager,
	hub *websocket.DriverHub,
) *GatewayHTTPHandler {
	return &GatewayHTTPHandler{svc: svc, logger: logger, auth: auth, hub: hub}
}

// RegisterRoutes mounts driver gateway endpoints on the provided mux.
func (handler *GatewayHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	driverOnly := jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)

	mux.HandleFunc("POST /drivers/{driver_id}/online", driverOnly(handler.handleToggleOnline))
	mux.HandleFunc("POST /drivers/{driver_id}/break", driverOnly(handler.handleGoOnBreak))
	mux.HandleFunc("POST /drivers/{driver_id}/break/end", driverOnly(handler.handleEndBreak))

	mux.HandleFunc("GET /drivers/{driver_id}/offers", driverOnly(handler.handleListOffers))
	mux.HandleFunc("POST /drivers/{driver_id}/offers/{booking_id}/accept", driverOnly(handler.handleAcceptOffer))
	mux.HandleFunc("POST /drivers/{driver_id}/offers/{booking_id}/decline", driverOnly(handler.handleDeclineOffer))

	mux.HandleFunc("POST /drivers/{driver_id}/trip/advance", driverOnly(handler.handleAdvanceTrip))
	mux.HandleFunc("POST /drivers/{driver_id}/trip/rating", driverOnly(handler.handleSubmitRating))

	mux.HandleFunc("GET /drivers/{driver_id}/earnings", driverOnly(handler.handleEarnings))

	// WebSocket does its own first-frame auth
	mux.HandleFunc("GET /ws/driver/{driver_id}", handler.hub.ConnectDriver)

	mux.HandleFunc("GET /drivers/health", handler.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

// ----- general helpers -----

type TokenRequest struct {
	UserID string    `json:"user_id"`
	Role   user.Role `json:"role"`
}

// TokenResponse represents the response for token generation
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      user.Role `json:"role"`
}

func (handler *GatewayHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, req.Role)
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      req.Role,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": req.Role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

func (handler *GatewayHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "driver-gateway",
	})
}

// pathDriverID validates that the path driver matches the token subject.
func (handler *GatewayHTTPHandler) pathDriverID(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", nil)
		return "", false
	}

	driverID := r.PathValue("driver_id")
	if strings.TrimSpace(driverID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "driver_id is required", nil)
		return "", false
	}
	if driverID != claims.Subject {
		handler.httpError(ctx, w, http.StatusForbidden, "driver_id does not match token subject", nil)
		return "", false
	}
	return driverID, true
}

// jsonResponse encodes data to an HTTP response, controlling status on failure.
func (handler *GatewayHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *GatewayHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *GatewayHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
