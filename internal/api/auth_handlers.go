package api

import (
	"net/http"
	"time"

	"coworking/internal/entities"
	"coworking/internal/service"
)

type AuthHandler struct {
	service  service.AuthService
	tokenTTL time.Duration
}

func NewAuthHandler(svc service.AuthService, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: svc, tokenTTL: tokenTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "User registered successfully", user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Login successful", entities.LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}
