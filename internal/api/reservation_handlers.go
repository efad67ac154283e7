package api

import (
	"net/http"
	"time"

	"coworking/internal/entities"
	apperrors "coworking/internal/errors"
	"coworking/internal/repository"
	"coworking/internal/service"
	"coworking/internal/utils"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	fields := map[string][]string{}
	spaceID, err := utils.QueryID(r, "coworking_space_id")
	if err != nil {
		fields["coworking_space_id"] = []string{"The coworking space id must be a positive integer."}
	}
	userID, err := utils.QueryID(r, "user_id")
	if err != nil {
		fields["user_id"] = []string{"The user id must be a positive integer."}
	}
	if len(fields) > 0 {
		writeError(w, r, apperrors.Validation(msgInvalidData, fields))
		return
	}

	reservations, err := h.Service.ListReservations(r.Context(), repository.ReservationFilter{
		CoworkingSpaceID: spaceID,
		UserID:           userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, reservations, "No reservations yet", "Reservations available")
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	res, err := h.Service.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Reservation retrieved successfully", res)
}

func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	// Both already passed the timestamp rule.
	start, _ := utils.ParseTimestamp(req.StartTime)
	end, _ := utils.ParseTimestamp(req.EndTime)

	res, err := h.Service.CreateReservation(r.Context(), service.CreateReservationInput{
		CoworkingSpaceID: req.CoworkingSpaceID,
		UserID:           req.UserID,
		StartTime:        start,
		EndTime:          end,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Reservation created successfully", res)
}

func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	var req entities.UpdateReservationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Service.UpdateReservation(r.Context(), id, optionalTime(req.StartTime), optionalTime(req.EndTime))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Reservation updated successfully", res)
}

func (h *ReservationHandler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	if err := h.Service.DeleteReservation(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Reservation deleted successfully", nil)
}

func optionalTime(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, err := utils.ParseTimestamp(*raw)
	if err != nil {
		return nil
	}
	return &t
}
