package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"seryvo/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type submitRatingRequest struct {
	Rating  int    `json:"rating"`  // 1..5; 0 means "use the default of 5"
	Comment string `json:"comment"` // optional
	Skip    bool   `json:"skip"`    // close the capture without completing
}

// ----- Handler: POST /drivers/{driver_id}/trip/advance -----

func (handler *GatewayHTTPHandler) handleAdvanceTrip(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.AdvanceTrip(ctxWithTimeout, ports.AdvanceTripInput{DriverID: driverID})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: POST /drivers/{driver_id}/trip/rating -----

func (handler *GatewayHTTPHandler) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	driverID, ok := handler.pathDriverID(ctx, w, r)
	if !ok {
		return
	}

	// limit body size; an empty body means "default rating"
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	var req submitRatingRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
		handler.httpError(ctx, w, http.StatusBadRequest, "rating must be between 1 and 5", nil)
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.SubmitRating(ctxWithTimeout, ports.SubmitRatingInput{
		DriverID: driverID,
		Rating:   req.Rating,
		Comment:  req.Comment,
		Skip:     req.Skip,
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
