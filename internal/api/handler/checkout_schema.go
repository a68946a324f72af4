package handler

import "time"

type addressRequest struct {
	FirstName     string `json:"firstName"     validate:"required"`
	LastName      string `json:"lastName"      validate:"required"`
	Email         string `json:"email"         validate:"required,email"`
	PhoneNumber   string `json:"phoneNumber"`
	Company       string `json:"company"`
	Address1      string `json:"address1"      validate:"required"`
	Address2      string `json:"address2"`
	City          string `json:"city"          validate:"required"`
	StateProvince string `json:"stateProvince"`
	ZipPostalCode string `json:"zipPostalCode" validate:"required"`
	CountryID     string `json:"countryId"     validate:"required"`
}

type setBillingAddressRequest struct {
	Address *addressRequest `json:"address" validate:"required"`
}

type setShippingAddressRequest struct {
	Address       *addressRequest `json:"address"`
	SameAsBilling bool            `json:"sameAsBilling"`
}

type selectShippingMethodRequest struct {
	ShippingMethodID string `json:"shippingMethodId" validate:"required"`
}

type selectPaymentMethodRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
}

type placeOrderRequest struct {
	OrderNotes               string `json:"orderNotes"`
	AcceptTermsAndConditions bool   `json:"acceptTermsAndConditions"`
}

type addressResponse struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	Company       string `json:"company,omitempty"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
	City          string `json:"city"`
	StateProvince string `json:"stateProvince"`
	ZipPostalCode string `json:"zipPostalCode"`
	CountryID     string `json:"countryId"`
}

type shippingMethodResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Cost         string `json:"cost"`
	DeliveryTime string `json:"deliveryTime,omitempty"`
	IsSelected   bool   `json:"isSelected"`
}

type paymentMethodResponse struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Description            string `json:"description"`
	Fee                    string `json:"fee"`
	IsSelected             bool   `json:"isSelected"`
	RequiresAdditionalInfo bool   `json:"requiresAdditionalInfo"`
}

type checkoutCustomerResponse struct {
	Email string `json:"email"`
}

type checkoutResponse struct {
	Step                         string                    `json:"step"`
	CartItems                    []cartItemResponse        `json:"cartItems"`
	BillingAddress               *addressResponse          `json:"billingAddress,omitempty"`
	ShippingAddress              *addressResponse          `json:"shippingAddress,omitempty"`
	ShippingAddressSameAsBilling bool                      `json:"shippingAddressSameAsBilling"`
	AvailableShippingMethods     []shippingMethodResponse  `json:"availableShippingMethods"`
	SelectedShippingMethod       *shippingMethodResponse   `json:"selectedShippingMethod,omitempty"`
	AvailablePaymentMethods      []paymentMethodResponse   `json:"availablePaymentMethods"`
	SelectedPaymentMethod        *paymentMethodResponse    `json:"selectedPaymentMethod,omitempty"`
	Totals                       totalsResponse            `json:"totals"`
	CustomerInfo                 *checkoutCustomerResponse `json:"customerInfo,omitempty"`
	IsGuestCheckout              bool                      `json:"isGuestCheckout"`
}

type orderConfirmationResponse struct {
	OrderID               string    `json:"orderId"`
	OrderNumber           string    `json:"orderNumber"`
	OrderTotal            string    `json:"orderTotal"`
	OrderStatus           string    `json:"orderStatus"`
	PaymentStatus         string    `json:"paymentStatus"`
	OrderDate             time.Time `json:"orderDate"`
	EstimatedDeliveryDate time.Time `json:"estimatedDeliveryDate"`
	RequiresPayment       bool      `json:"requiresPayment"`
	Message               string    `json:"message"`
}
