package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ledger/internal/middleware"
	"github.com/iliyamo/cinema-ledger/internal/model"
	"github.com/iliyamo/cinema-ledger/internal/service"
	"github.com/iliyamo/cinema-ledger/internal/utils"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	Svc       service.BookingUseCase
	JWTSecret string
	AccessTTL time.Duration
}

func NewAuthHandler(svc service.BookingUseCase, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Svc: svc, JWTSecret: secret, AccessTTL: ttl}
}

// ----- DTOs -----

type registerReq struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResp struct {
	User   model.User        `json:"user"`
	Access utils.AccessToken `json:"access"`
}

// Register creates a customer account and returns a token right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	u, err := h.Svc.Register(c.Request().Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		return fail(c, err)
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login verifies the credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return badRequest(c, "username and password are required")
	}
	u, err := h.Svc.Authenticate(req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid credentials"})
	}
	return h.issue(c, http.StatusOK, u)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.Svc.GetUser(middleware.Username(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.JWTSecret, u.Username, string(u.Role), h.AccessTTL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(status, authResp{User: u, Access: access})
}
