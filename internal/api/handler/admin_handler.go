package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/ports"
)

// AdminHandler handles administrative card and user management. Card
// operations go through the card service with unscoped ownership.
type AdminHandler struct {
	cardService  ports.CardService
	adminService ports.AdminService
}

func NewAdminHandler(cardService ports.CardService, adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{cardService: cardService, adminService: adminService}
}

type createCardRequest struct {
	UserID     string    `json:"user_id"     validate:"required"`
	CardOwner  string    `json:"card_owner"  validate:"required"`
	ExpiryDate time.Time `json:"expiry_date" validate:"required"`
	BIN        string    `json:"bin"`
}

type setBalanceRequest struct {
	CardID  string          `json:"card_id" validate:"required"`
	Balance decimal.Decimal `json:"balance" validate:"required"`
}

type createUserRequest struct {
	Email      string `json:"email"       validate:"required,email"`
	FirstName  string `json:"first_name"  validate:"required"`
	LastName   string `json:"last_name"   validate:"required"`
	Patronymic string `json:"patronymic"`
	Password   string `json:"password"    validate:"required,min=6"`
}

type setUserStatusRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type setUserLockRequest struct {
	AccountNonLocked *bool `json:"account_non_locked" validate:"required"`
}

type updateUserRequest struct {
	Email      *string `json:"email"      validate:"omitempty,email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Patronymic *string `json:"patronymic"`
	Role       *string `json:"role"       validate:"omitempty,oneof=ADMIN USER"`
}

// CreateCard handles POST /api/v1/admin/cards.
//
// @Summary      Issue a new card for a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCardRequest  true  "Card details"
// @Success      201   {object}  ports.CardView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/admin/cards [post]
func (h *AdminHandler) CreateCard(c echo.Context) error {
	var req createCardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card, err := h.cardService.Create(c.Request().Context(), ports.CreateCardInput{
		UserID:     req.UserID,
		CardOwner:  req.CardOwner,
		ExpiryDate: req.ExpiryDate,
		BIN:        req.BIN,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

// ListCards handles GET /api/v1/admin/cards.
func (h *AdminHandler) ListCards(c echo.Context) error {
	page, err := h.cardService.ListAll(c.Request().Context(),
		queryInt(c, "page", 1), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetCard handles GET /api/v1/admin/cards/:cardId.
func (h *AdminHandler) GetCard(c echo.Context) error {
	card, err := h.cardService.Get(c.Request().Context(), c.Param("cardId"), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// SetBalance handles PATCH /api/v1/admin/cards/balance.
//
// @Summary      Set a card's balance
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setBalanceRequest  true  "Card ID and new balance"
// @Success      200   {object}  ports.CardView
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/admin/cards/balance [patch]
func (h *AdminHandler) SetBalance(c echo.Context) error {
	var req setBalanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card, err := h.cardService.SetBalance(c.Request().Context(), req.CardID, req.Balance)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// BlockCard handles POST /api/v1/admin/cards/:cardId/block.
func (h *AdminHandler) BlockCard(c echo.Context) error {
	card, err := h.cardService.Block(c.Request().Context(), c.Param("cardId"), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// ActivateCard handles POST /api/v1/admin/cards/:cardId/activate.
func (h *AdminHandler) ActivateCard(c echo.Context) error {
	card, err := h.cardService.Activate(c.Request().Context(), c.Param("cardId"), "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// DeleteCard handles DELETE /api/v1/admin/cards/:cardId.
func (h *AdminHandler) DeleteCard(c echo.Context) error {
	if err := h.cardService.Delete(c.Request().Context(), c.Param("cardId"), ""); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser handles POST /api/v1/admin/users. Unlike self-registration it
// does not sign the new user in.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.CreateUser(c.Request().Context(), ports.RegisterInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
		Password:   req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, err := h.adminService.ListUsers(c.Request().Context(),
		queryInt(c, "page", 1), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetUser handles GET /api/v1/admin/users/:userId.
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.adminService.GetUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetUserStatus handles PATCH /api/v1/admin/users/:userId/status.
func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	var req setUserStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.SetUserEnabled(c.Request().Context(), c.Param("userId"), *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetUserLock handles PATCH /api/v1/admin/users/:userId/lock.
func (h *AdminHandler) SetUserLock(c echo.Context) error {
	var req setUserLockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.SetUserLock(c.Request().Context(), c.Param("userId"), *req.AccountNonLocked)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/admin/users/:userId. Absent fields are left
// untouched; the password hash is never changed through this endpoint.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.adminService.UpdateUser(c.Request().Context(), c.Param("userId"), ports.UpdateUserInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
		Role:       req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/admin/users/:userId. The user's cards
// and refresh tokens are removed in the same unit of work.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.adminService.DeleteUser(c.Request().Context(), c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
