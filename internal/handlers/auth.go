// Package handlers contains the HTTP layer: request decoding, validation,
// error mapping and response shaping. Business rules live in services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/auth"
	"github.com/namanabbad02/invoice-app/internal/httpx"
	"github.com/namanabbad02/invoice-app/internal/models"
)

var validate = validator.New()

// AuthHandler registers users and issues bearer tokens.
type AuthHandler struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Password string `json:"password" validate:"required,min=6"`
}

type authResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Register creates a user and returns a 12h token so the fresh account can be
// used immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Please add all fields", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	user := models.User{Username: req.Username, Password: string(hash)}
	if err := h.DB.WithContext(r.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest, "User already exists", nil)
			return
		}
		h.Log.WithError(err).Error("register: create user")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}

	token, err := auth.IssueToken(user.ID, 12*time.Hour)
	if err != nil {
		h.Log.WithError(err).Error("register: sign token")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, authResponse{ID: user.ID, Username: user.Username, Token: token})
}

// Login checks credentials and returns a 1h token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "Please add all fields", nil)
		return
	}

	var user models.User
	err := h.DB.WithContext(r.Context()).Where("username = ?", req.Username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("login: lookup user")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := auth.IssueToken(user.ID, time.Hour)
	if err != nil {
		h.Log.WithError(err).Error("login: sign token")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{ID: user.ID, Username: user.Username, Token: token})
}
