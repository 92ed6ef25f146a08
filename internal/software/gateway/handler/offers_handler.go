package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"seryvo/internal/ports"
)

// ----- Handlers: GET /drivers/{driver_id}/offers and accept/decline -----

func (handler *GatewayHTTPHandler) handleListOffers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ListOffers(ctxWithTimeout, driverID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

func (handler *GatewayHTTPHandler) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	bookingID := strings.TrimSpace(r.PathValue("booking_id"))
	if bookingID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.AcceptOffer(ctxWithTimeout, ports.AcceptOfferInput{
		DriverID:  driverID,
		BookingID: bookingID,
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

func (handler *GatewayHTTPHandler) handleDeclineOffer(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	bookingID := strings.TrimSpace(r.PathValue("booking_id"))
	if bookingID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "booking_id is required", nil)
		return
	}
	ctx = handler.logger.WithBookingID(ctx, bookingID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.DeclineOffer(ctxWithTimeout, ports.DeclineOfferInput{
		DriverID:  driverID,
		BookingID: bookingID,
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
