package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/auth/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/config"
)

const (
	msgDuplicateEmail = "That email address is already taken."
	msgBadCredentials = "Your account or password is incorrect. If you don't remember your password, reset it now."
	msgUnauthorized   = "Unauthorized"
	msgInternal       = "Something went wrong. Please try again."
	msgResetRequested = "If that email address is in our database, we will send you an email to reset your password."
)

type Handler struct {
	svc service.AccountService
	cfg *config.Config
	log *zap.Logger
}

func NewHandler(svc service.AccountService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/check-email", h.CheckEmail)
	auth.POST("/login", h.Login)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.GET("/me", h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
		return
	}
	body.ClientIP = c.ClientIP()

	res, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{
		Success: true,
		User:    dto.NewAccountResponse(res.Account),
		Token:   res.Token,
	})
}

func (h *Handler) CheckEmail(c *gin.Context) {
	var body dto.CheckEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
		return
	}

	exists, err := h.svc.CheckEmail(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckEmailResponse{
		Exists: exists,
		Email:  strings.ToLower(strings.TrimSpace(body.Email)),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
		return
	}
	body.ClientIP = c.ClientIP()

	res, err := h.svc.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		User:    dto.NewAccountResponse(res.Account),
		Token:   res.Token,
	})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var body dto.ForgotPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
		return
	}
	body.ClientIP = c.ClientIP()

	if err := h.svc.RequestPasswordReset(c.Request.Context(), body); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: msgResetRequested})
}

func (h *Handler) Me(c *gin.Context) {
	account, err := h.svc.CurrentAccount(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// handleError maps service sentinels onto HTTP statuses. Every token failure
// mode collapses into the same 401 and both login failure modes share one
// message, so responses never leak whether an account exists.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsAlreadyExists(err):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgDuplicateEmail})
	case customErrors.IsWeakPassword(err):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{
			Message: fmt.Sprintf("Password must be at least %d characters long.", h.cfg.MinPasswordLength),
		})
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgBadCredentials})
	case customErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgUnauthorized})
	default:
		h.log.Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternal})
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
