package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"seryvo/internal/backend"
	"seryvo/internal/domain/driver"
	"seryvo/internal/lifecycle"
	"seryvo/internal/ports"
)

// ----- Handlers: POST /drivers/{driver_id}/online | /break | /break/end -----

func (handler *GatewayHTTPHandler) handleToggleOnline(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.ToggleOnline(ctxWithTimeout, ports.AvailabilityInput{DriverID: driverID})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

func (handler *GatewayHTTPHandler) handleGoOnBreak(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.GoOnBreak(ctxWithTimeout, ports.AvailabilityInput{DriverID: driverID})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

func (handler *GatewayHTTPHandler) handleEndBreak(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.EndBreak(ctxWithTimeout, ports.AvailabilityInput{DriverID: driverID})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// serviceError maps service errors onto HTTP statuses.
func (handler *GatewayHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrOperationInFlight):
		handler.httpError(ctx, w, http.StatusTooManyRequests, err.Error(), err)
	case errors.Is(err, lifecycle.ErrOfferNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, lifecycle.ErrOfferExpired):
		handler.httpError(ctx, w, http.StatusGone, err.Error(), err)
	case errors.Is(err, backend.ErrConflict),
		errors.Is(err, lifecycle.ErrNoActiveTrip),
		errors.Is(err, lifecycle.ErrTripNotAdvanceable),
		errors.Is(err, lifecycle.ErrRatingNotPending),
		errors.Is(err, lifecycle.ErrNotSolicitable),
		errors.Is(err, driver.ErrInvalidAvailabilitySwitch):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusBadGateway, err.Error(), err)
	}
}
