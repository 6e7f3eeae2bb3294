package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role" example:"lender"`
}

type registerResponse struct {
	Status string `json:"status" example:"registered"`
	Role   string `json:"role" example:"lender"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role" example:"lender"`
}

type loginResponse struct {
	Status   string `json:"status" example:"success"`
	Username string `json:"username"`
	Role     string `json:"role"`
	UserID   int64  `json:"user_id"`
}

// Register creates a lender account.
//
// @Summary      Register a lender
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details; role defaults to lender"
// @Success      200   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	f, err := decodeJSON(req)
	if err != nil {
		return nil, err
	}

	user, err := h.authService.Register(ctx,
		f.String("username"),
		f.String("email"),
		f.String("password"),
		f.StringOr("role", domain.RoleLender),
	)
	if err != nil {
		return nil, err
	}

	return wire.JSON(http.StatusOK, registerResponse{Status: "registered", Role: user.Role}), nil
}

// Login authenticates an account and sets identifying cookies.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(ctx context.Context, req *wire.Request) (*wire.Response, error) {
	creds, err := decodeCredentials(req)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("other", "rejected").Inc()
		return nil, err
	}

	user, err := h.authService.Login(ctx, creds.Username, creds.Password, creds.Role)
	metrics.LoginAttemptsTotal.WithLabelValues(loginRoleLabel(creds.Role), loginResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	h.log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("login succeeded")

	resp := wire.JSON(http.StatusOK, loginResponse{
		Status:   "success",
		Username: user.Username,
		Role:     user.Role,
		UserID:   user.ID,
	})
	resp.AddHeader("Set-Cookie", "username="+user.Username+"; Path=/; HttpOnly")
	resp.AddHeader("Set-Cookie", "user_id="+strconv.FormatInt(user.ID, 10)+"; Path=/; HttpOnly")
	return resp, nil
}

// decodeCredentials picks the body decoder from the declared content type.
func decodeCredentials(req *wire.Request) (loginRequest, error) {
	if err := requireBody(req); err != nil {
		return loginRequest{}, err
	}

	switch mediaType(req) {
	case wire.ContentTypeJSON:
		f, err := decodeJSON(req)
		if err != nil {
			return loginRequest{}, err
		}
		return loginRequest{
			Username: f.String("username"),
			Password: f.String("password"),
			Role:     f.String("role"),
		}, nil
	case wire.ContentTypeForm:
		form, err := wire.DecodeForm(req.Body)
		if err != nil {
			return loginRequest{}, fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)
		}
		return loginRequest{
			Username: form["username"],
			Password: form["password"],
			Role:     form["role"],
		}, nil
	default:
		return loginRequest{}, domain.ErrUnsupportedMediaType
	}
}

// loginRoleLabel bounds the role label to known values.
func loginRoleLabel(role string) string {
	switch role {
	case domain.RoleAdmin, domain.RoleLender:
		return role
	default:
		return "other"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRoleMismatch):
		return "role_mismatch"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "rejected"
	}
}
