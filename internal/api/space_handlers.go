package api

import (
	"net/http"

	"coworking/internal/db"
	"coworking/internal/entities"
	"coworking/internal/repository"
	"coworking/internal/service"
	"coworking/internal/utils"
)

type SpaceHandler struct {
	Service *service.SpaceService
}

func NewSpaceHandler(svc *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{Service: svc}
}

func (h *SpaceHandler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.Service.ListSpaces(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, spaces, "No coworking spaces available yet", "Coworking spaces available")
}

func (h *SpaceHandler) GetSpace(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	space, err := h.Service.GetSpace(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Coworking space retrieved successfully", space)
}

func (h *SpaceHandler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateSpaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	space := &db.CoworkingSpace{
		Name:         req.Name,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		Description:  req.Description,
		PricePerHour: *req.PricePerHour,
	}
	if err := h.Service.CreateSpace(r.Context(), space); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Coworking space created successfully", space)
}

func (h *SpaceHandler) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	var req entities.UpdateSpaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	space, err := h.Service.UpdateSpace(r.Context(), id, repository.SpaceUpdate{
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		SetDescription: req.Description.Set,
		Description:    req.Description.Value,
		PricePerHour:   req.PricePerHour,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Coworking space updated successfully", space)
}

func (h *SpaceHandler) DeleteSpace(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		writeError(w, r, badID(err))
		return
	}
	if err := h.Service.DeleteSpace(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
