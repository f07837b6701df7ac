package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/ports"
)

// CardHandler handles the card endpoints scoped to the authenticated user.
type CardHandler struct {
	cardService ports.CardService
}

func NewCardHandler(cardService ports.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

type balanceResponse struct {
	CardID  string          `json:"card_id"`
	Balance decimal.Decimal `json:"balance"`
}

// List handles GET /api/v1/user/cards.
//
// @Summary      List own cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        size    query     int     false  "Page size"
// @Param        search  query     string  false  "Last four digits or owner name fragment"
// @Success      200     {object}  ports.CardPage
// @Failure      401     {object}  map[string]string
// @Router       /api/v1/user/cards [get]
func (h *CardHandler) List(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, err := h.cardService.List(c.Request().Context(), ports.ListCardsInput{
		OwnerEmail: email,
		Page:       queryInt(c, "page", 1),
		Size:       queryInt(c, "size", 0),
		Search:     c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/user/cards/:cardId.
//
// @Summary      Get one of the user's cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId  path      string  true  "Card ID"
// @Success      200     {object}  ports.CardView
// @Failure      404     {object}  map[string]string
// @Router       /api/v1/user/cards/{cardId} [get]
func (h *CardHandler) Get(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	card, err := h.cardService.Get(c.Request().Context(), c.Param("cardId"), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// Balance handles GET /api/v1/user/cards/:cardId/balance.
func (h *CardHandler) Balance(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	cardID := c.Param("cardId")
	balance, err := h.cardService.Balance(c.Request().Context(), cardID, email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{CardID: cardID, Balance: balance})
}

// AggregateBalance handles GET /api/v1/user/cards/balance.
func (h *CardHandler) AggregateBalance(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	summary, err := h.cardService.AggregateBalance(c.Request().Context(), email,
		queryInt(c, "page", 1), queryInt(c, "size", 0))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Block handles POST /api/v1/user/cards/:cardId/block.
//
// @Summary      Block one of the user's cards
// @Tags         cards
// @Produce      json
// @Security     BearerAuth
// @Param        cardId  path      string  true  "Card ID"
// @Success      200     {object}  ports.CardView
// @Failure      404     {object}  map[string]string
// @Failure      422     {object}  map[string]string
// @Router       /api/v1/user/cards/{cardId}/block [post]
func (h *CardHandler) Block(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	card, err := h.cardService.Block(c.Request().Context(), c.Param("cardId"), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// Activate handles POST /api/v1/user/cards/:cardId/activate.
func (h *CardHandler) Activate(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	card, err := h.cardService.Activate(c.Request().Context(), c.Param("cardId"), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, card)
}

// Delete handles DELETE /api/v1/user/cards/:cardId.
func (h *CardHandler) Delete(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.cardService.Delete(c.Request().Context(), c.Param("cardId"), email); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
