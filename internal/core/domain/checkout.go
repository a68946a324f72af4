package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutStep is the last transition applied to a checkout session. Steps
// may be revisited in any order once checkout has started.
type CheckoutStep string

const (
	StepStarted                CheckoutStep = "started"
	StepBillingSet             CheckoutStep = "billing_set"
	StepShippingAddressSet     CheckoutStep = "shipping_address_set"
	StepShippingMethodSelected CheckoutStep = "shipping_method_selected"
	StepPaymentMethodSelected  CheckoutStep = "payment_method_selected"
	StepPlaced                 CheckoutStep = "placed"
)

// Address is a billing or shipping address.
type Address struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phone_number"`
	Company       string `json:"company,omitempty"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
	City          string `json:"city"`
	StateProvince string `json:"state_province"`
	ZipPostalCode string `json:"zip_postal_code"`
	CountryID     string `json:"country_id"`
}

// ShippingMethod is a shipping option offered for an address and cart.
type ShippingMethod struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryTime string          `json:"delivery_time,omitempty"`
	IsSelected   bool            `json:"is_selected"`
}

// PaymentMethod is a payment option. Fee is added on top of the total.
type PaymentMethod struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description"`
	Fee                    decimal.Decimal `json:"fee"`
	RequiresAdditionalInfo bool            `json:"requires_additional_info"`
	IsSelected             bool            `json:"is_selected"`
}

// CheckoutSession is the accumulated checkout state of one identity.
type CheckoutSession struct {
	OwnerID                  uuid.UUID        `json:"owner_id"`
	Step                     CheckoutStep     `json:"step"`
	Lines                    []CartLine       `json:"lines"`
	BillingAddress           *Address         `json:"billing_address,omitempty"`
	ShippingAddress          *Address         `json:"shipping_address,omitempty"`
	ShippingSameAsBilling    bool             `json:"shipping_same_as_billing"`
	AvailableShippingMethods []ShippingMethod `json:"available_shipping_methods"`
	SelectedShippingMethod   *ShippingMethod  `json:"selected_shipping_method,omitempty"`
	AvailablePaymentMethods  []PaymentMethod  `json:"available_payment_methods"`
	SelectedPaymentMethod    *PaymentMethod   `json:"selected_payment_method,omitempty"`
	Totals                   Totals           `json:"totals"`
	IsGuestCheckout          bool             `json:"is_guest_checkout"`
	CustomerEmail            string           `json:"customer_email,omitempty"`
	StartedAt                time.Time        `json:"started_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

// EffectiveShippingAddress is the address shipping methods are quoted for.
func (s *CheckoutSession) EffectiveShippingAddress() *Address {
	if s.ShippingSameAsBilling {
		return s.BillingAddress
	}
	return s.ShippingAddress
}

// OrderConfirmation is the result of a placed order.
type OrderConfirmation struct {
	OrderID           string     `json:"order_id"`
	OrderNumber       string     `json:"order_number"`
	CustomerGUID      uuid.UUID  `json:"customer_guid"`
	Lines             []CartLine `json:"lines"`
	BillingAddress    *Address   `json:"billing_address,omitempty"`
	ShippingAddress   *Address   `json:"shipping_address,omitempty"`
	ShippingMethodID  string     `json:"shipping_method_id,omitempty"`
	PaymentMethodID   string     `json:"payment_method_id,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Totals            Totals     `json:"totals"`
	OrderStatus       string     `json:"order_status"`
	PaymentStatus     string     `json:"payment_status"`
	OrderDate         time.Time  `json:"order_date"`
	EstimatedDelivery time.Time  `json:"estimated_delivery"`
	RequiresPayment   bool       `json:"requires_payment"`
	Message           string     `json:"message"`
}

const (
	OrderStatusPending   = "Pending"
	PaymentStatusPending = "Pending"
)
