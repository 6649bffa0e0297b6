package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carelink-api/internal/service"
	"carelink-api/pkg/metrics"
)

type AuthHandler struct {
	svc     *service.AuthService
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, collector *metrics.Collector, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, metrics: collector, log: log}
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &service.RegisterCommand{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.UsersRegisteredTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    UserResponse{Email: user.Email, Name: user.Name},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"tokens": gin.H{
			"access":  pair.AccessToken,
			"refresh": pair.RefreshToken,
		},
		"user": UserResponse{Email: user.Email, Name: user.Name},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  pair.AccessToken,
		"refresh": pair.RefreshToken,
	})
}
