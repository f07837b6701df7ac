package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/finwave/cards-api/internal/core/ports"
)

// TransferHandler handles transfers between the authenticated user's cards.
type TransferHandler struct {
	transferService ports.TransferService
}

func NewTransferHandler(transferService ports.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

type transferRequest struct {
	FromCardID string          `json:"from_card_id" validate:"required"`
	ToCardID   string          `json:"to_card_id"   validate:"required"`
	Amount     decimal.Decimal `json:"amount"       validate:"required"`
}

type transferResponse struct {
	Message string `json:"message"`
}

// Transfer handles POST /api/v1/user/cards/transfer.
//
// @Summary      Transfer between own cards
// @Tags         cards
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      transferRequest  true  "Transfer details"
// @Success      200   {object}  transferResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/user/cards/transfer [post]
func (h *TransferHandler) Transfer(c echo.Context) error {
	email, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.transferService.Transfer(c.Request().Context(), ports.TransferInput{
		FromCardID: req.FromCardID,
		ToCardID:   req.ToCardID,
		Amount:     req.Amount,
		OwnerEmail: email,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transferResponse{Message: "transfer completed"})
}
