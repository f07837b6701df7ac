package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/finwave/cards-api/internal/core/ports"
)

// refreshCookieName is the cookie carrying the refresh token. The token never
// appears in a JSON body; rotation and logout read it back from here.
const refreshCookieName = "refreshToken"

// AuthHandler handles HTTP requests for authentication and the refresh token
// lifecycle.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	FirstName  string `json:"first_name"  validate:"required"`
	LastName   string `json:"last_name"   validate:"required"`
	Patronymic string `json:"patronymic"`
	Password   string `json:"password"    validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        ports.UserProfile `json:"user"`
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
		Password:   req.Password,
	})
	if err != nil {
		return err
	}

	setRefreshCookie(c, session)
	return c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		User:        session.User,
	})
}

// Login authenticates a user and issues a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setRefreshCookie(c, session)
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		User:        session.User,
	})
}

// Refresh rotates the refresh token presented in the cookie and issues a new
// token pair. The previous refresh token becomes permanently unusable.
//
// @Summary      Rotate the refresh token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	session, err := h.authService.Refresh(c.Request().Context(), refreshCookie(c))
	if err != nil {
		return err
	}

	setRefreshCookie(c, session)
	return c.JSON(http.StatusOK, sessionResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		User:        session.User,
	})
}

// Logout revokes the presented refresh token and clears the cookie. It
// succeeds whether or not a valid token was presented.
//
// @Summary      Logout
// @Tags         auth
// @Success      204  "No Content"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), refreshCookie(c)); err != nil {
		return err
	}

	clearRefreshCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func refreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setRefreshCookie(c echo.Context, session *ports.Session) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    session.RefreshToken,
		Path:     "/",
		MaxAge:   int(session.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
