package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/grandnode/mobile-api/internal/api/metrics"
	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

// CheckoutHandler exposes the checkout state machine. Every route requires
// a guest or registered identity.
type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) respond(c echo.Context, sess *domain.CheckoutSession, err error, message string) error {
	if err != nil {
		return err
	}
	metrics.CheckoutStepsTotal.WithLabelValues(string(sess.Step)).Inc()
	return success(c, toCheckoutResponse(sess), message)
}

// Start opens (or resumes) the checkout session for the current cart.
//
// @Summary      Start checkout
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=checkoutResponse}
// @Failure      400  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Router       /mobile-api/checkout/start [get]
func (h *CheckoutHandler) Start(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	sess, err := h.service.Start(c.Request().Context(), identity)
	return h.respond(c, sess, err, "Checkout started successfully")
}

// Get renders the current checkout session.
//
// @Summary      Get checkout
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=checkoutResponse}
// @Failure      400  {object}  Envelope
// @Router       /mobile-api/checkout [get]
func (h *CheckoutHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	sess, err := h.service.Get(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return success(c, toCheckoutResponse(sess), "Checkout retrieved successfully")
}

// SetBillingAddress
//
// @Summary      Set billing address
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setBillingAddressRequest  true  "Billing address"
// @Success      200   {object}  Envelope{data=checkoutResponse}
// @Failure      400   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/checkout/billing-address [post]
func (h *CheckoutHandler) SetBillingAddress(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req setBillingAddressRequest
	if err := bind(c, &req, "Invalid billing address data"); err != nil {
		return err
	}
	sess, err := h.service.SetBillingAddress(c.Request().Context(), identity, *toAddress(req.Address))
	return h.respond(c, sess, err, "Billing address set successfully")
}

// SetShippingAddress
//
// @Summary      Set shipping address
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setShippingAddressRequest  true  "Shipping address or sameAsBilling"
// @Success      200   {object}  Envelope{data=checkoutResponse}
// @Failure      400   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/checkout/shipping-address [post]
func (h *CheckoutHandler) SetShippingAddress(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req setShippingAddressRequest
	if err := bind(c, &req, "Invalid shipping address data"); err != nil {
		return err
	}
	sess, err := h.service.SetShippingAddress(c.Request().Context(), identity, toAddress(req.Address), req.SameAsBilling)
	return h.respond(c, sess, err, "Shipping address set successfully")
}

// ShippingMethods lists the methods offered for the effective shipping address.
//
// @Summary      List shipping methods
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]shippingMethodResponse}
// @Failure      400  {object}  Envelope
// @Router       /mobile-api/checkout/shipping-methods [get]
func (h *CheckoutHandler) ShippingMethods(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	methods, err := h.service.ShippingMethods(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return success(c, toShippingMethods(methods), "Shipping methods retrieved successfully")
}

// SelectShippingMethod selects the method with the given id. Unknown ids
// leave the selection unchanged.
//
// @Summary      Select shipping method
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectShippingMethodRequest  true  "Shipping method id"
// @Success      200   {object}  Envelope{data=checkoutResponse}
// @Failure      400   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/checkout/shipping-method [post]
func (h *CheckoutHandler) SelectShippingMethod(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req selectShippingMethodRequest
	if err := bind(c, &req, "Invalid shipping method data"); err != nil {
		return err
	}
	sess, err := h.service.SelectShippingMethod(c.Request().Context(), identity, req.ShippingMethodID)
	return h.respond(c, sess, err, "Shipping method selected successfully")
}

// PaymentMethods
//
// @Summary      List payment methods
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=[]paymentMethodResponse}
// @Failure      400  {object}  Envelope
// @Router       /mobile-api/checkout/payment-methods [get]
func (h *CheckoutHandler) PaymentMethods(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	methods, err := h.service.PaymentMethods(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return success(c, toPaymentMethods(methods), "Payment methods retrieved successfully")
}

// SelectPaymentMethod
//
// @Summary      Select payment method
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectPaymentMethodRequest  true  "Payment method id"
// @Success      200   {object}  Envelope{data=checkoutResponse}
// @Failure      400   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/checkout/payment-method [post]
func (h *CheckoutHandler) SelectPaymentMethod(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req selectPaymentMethodRequest
	if err := bind(c, &req, "Invalid payment method data"); err != nil {
		return err
	}
	sess, err := h.service.SelectPaymentMethod(c.Request().Context(), identity, req.PaymentMethodID)
	return h.respond(c, sess, err, "Payment method selected successfully")
}

// PlaceOrder
//
// @Summary      Place order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      placeOrderRequest  true  "Order confirmation"
// @Success      200   {object}  Envelope{data=orderConfirmationResponse}
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Failure      422   {object}  Envelope
// @Router       /mobile-api/checkout/place-order [post]
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req placeOrderRequest
	if err := bind(c, &req, "Invalid order data"); err != nil {
		return err
	}

	order, err := h.service.PlaceOrder(c.Request().Context(), identity, ports.PlaceOrderInput{
		AcceptTerms: req.AcceptTermsAndConditions,
		Notes:       req.OrderNotes,
	})
	if err != nil {
		return err
	}

	metrics.OrdersPlacedTotal.WithLabelValues(string(identity.UserType)).Inc()
	metrics.OrderTotalAmount.Observe(order.Totals.Total.InexactFloat64())
	metrics.CheckoutStepsTotal.WithLabelValues(string(domain.StepPlaced)).Inc()
	return success(c, toOrderConfirmation(order), "Order placed successfully")
}
