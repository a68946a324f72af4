package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/ports"
)

const defaultAddQuantity = 1

type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) respond(c echo.Context, view *ports.CartView, err error, message string) error {
	if err != nil {
		return err
	}
	return success(c, toCartResponse(view), message)
}

// GetCart
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=cartResponse}
// @Failure      401  {object}  Envelope
// @Router       /mobile-api/cart [get]
func (h *CartHandler) GetCart(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	view, err := h.service.GetCart(c.Request().Context(), identity)
	return h.respond(c, view, err, "Cart retrieved successfully")
}

// AddItem adds a product, merging with an identical line already in the cart.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addToCartRequest  true  "Product and quantity"
// @Success      200   {object}  Envelope{data=cartResponse}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/cart/add [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req addToCartRequest
	if err := bind(c, &req, "Invalid add to cart data"); err != nil {
		return err
	}

	input := ports.AddToCartInput{ProductID: req.ProductID, Quantity: defaultAddQuantity}
	if req.Quantity != nil {
		input.Quantity = *req.Quantity
	}
	if req.CustomPrice != nil {
		price := decimal.NewFromFloat(*req.CustomPrice)
		input.EnteredPrice = &price
	}

	view, err := h.service.AddItem(c.Request().Context(), identity, input)
	return h.respond(c, view, err, "Item added to cart successfully")
}

// UpdateItem sets a line's quantity. Zero or less removes the line.
//
// @Summary      Update cart item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Cart item id"
// @Param        body  body      updateCartItemRequest  true  "New quantity"
// @Success      200   {object}  Envelope{data=cartResponse}
// @Failure      404   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req updateCartItemRequest
	if err := bind(c, &req, "Invalid update data"); err != nil {
		return err
	}
	view, err := h.service.UpdateQuantity(c.Request().Context(), identity, c.Param("id"), req.Quantity)
	return h.respond(c, view, err, "Cart updated successfully")
}

// RemoveItem
//
// @Summary      Remove cart item
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cart item id"
// @Success      200  {object}  Envelope{data=cartResponse}
// @Failure      404  {object}  Envelope
// @Router       /mobile-api/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	view, err := h.service.RemoveItem(c.Request().Context(), identity, c.Param("id"))
	return h.respond(c, view, err, "Item removed from cart successfully")
}

// Clear
//
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=cartResponse}
// @Router       /mobile-api/cart/clear [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	view, err := h.service.Clear(c.Request().Context(), identity)
	return h.respond(c, view, err, "Cart cleared successfully")
}

// Totals
//
// @Summary      Cart totals
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=totalsResponse}
// @Router       /mobile-api/cart/totals [get]
func (h *CartHandler) Totals(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	totals, err := h.service.Totals(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return success(c, toTotalsResponse(totals), "Cart totals calculated successfully")
}
