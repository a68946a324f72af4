package handler

import (
	"github.com/shopspring/decimal"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func toTokenResponse(p *domain.TokenPair) tokenResponse {
	resp := tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
		UserType:     string(p.UserType),
		CustomerGUID: p.CustomerGUID.String(),
	}
	if p.Customer != nil {
		resp.CustomerInfo = &customerInfoResponse{
			Email:     p.Customer.Email,
			FirstName: p.Customer.FirstName,
			LastName:  p.Customer.LastName,
			FullName:  p.Customer.FullName(),
		}
	}
	return resp
}

func toTotalsResponse(t domain.Totals) totalsResponse {
	return totalsResponse{
		Subtotal:       money(t.Subtotal),
		DiscountAmount: money(t.DiscountAmount),
		ShippingCost:   money(t.ShippingCost),
		TaxAmount:      money(t.TaxAmount),
		PaymentFee:     money(t.PaymentFee),
		Total:          money(t.Total),
		Currency:       t.Currency,
	}
}

func toCartItems(lines []domain.CartLine, currency string) []cartItemResponse {
	items := make([]cartItemResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, cartItemResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			UnitPrice:   money(l.UnitPrice()),
			Quantity:    l.Quantity,
			TotalPrice:  money(l.LineTotal()),
			Currency:    currency,
		})
	}
	return items
}

func toCartResponse(v *ports.CartView) cartResponse {
	return cartResponse{
		Items:      toCartItems(v.Lines, v.Totals.Currency),
		Totals:     toTotalsResponse(v.Totals),
		TotalItems: v.TotalItems,
		IsEmpty:    v.IsEmpty,
	}
}

func toAddress(r *addressRequest) *domain.Address {
	if r == nil {
		return nil
	}
	return &domain.Address{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		PhoneNumber:   r.PhoneNumber,
		Company:       r.Company,
		Address1:      r.Address1,
		Address2:      r.Address2,
		City:          r.City,
		StateProvince: r.StateProvince,
		ZipPostalCode: r.ZipPostalCode,
		CountryID:     r.CountryID,
	}
}

func toAddressResponse(a *domain.Address) *addressResponse {
	if a == nil {
		return nil
	}
	return &addressResponse{
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		PhoneNumber:   a.PhoneNumber,
		Company:       a.Company,
		Address1:      a.Address1,
		Address2:      a.Address2,
		City:          a.City,
		StateProvince: a.StateProvince,
		ZipPostalCode: a.ZipPostalCode,
		CountryID:     a.CountryID,
	}
}

func toShippingMethod(m domain.ShippingMethod) shippingMethodResponse {
	return shippingMethodResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Cost:         money(m.Cost),
		DeliveryTime: m.DeliveryTime,
		IsSelected:   m.IsSelected,
	}
}

func toShippingMethods(ms []domain.ShippingMethod) []shippingMethodResponse {
	out := make([]shippingMethodResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toShippingMethod(m))
	}
	return out
}

func toPaymentMethod(m domain.PaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:                     m.ID,
		Name:                   m.Name,
		Description:            m.Description,
		Fee:                    money(m.Fee),
		IsSelected:             m.IsSelected,
		RequiresAdditionalInfo: m.RequiresAdditionalInfo,
	}
}

func toPaymentMethods(ms []domain.PaymentMethod) []paymentMethodResponse {
	out := make([]paymentMethodResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toPaymentMethod(m))
	}
	return out
}

func toCheckoutResponse(s *domain.CheckoutSession) checkoutResponse {
	resp := checkoutResponse{
		Step:                         string(s.Step),
		CartItems:                    toCartItems(s.Lines, s.Totals.Currency),
		BillingAddress:               toAddressResponse(s.BillingAddress),
		ShippingAddress:              toAddressResponse(s.EffectiveShippingAddress()),
		ShippingAddressSameAsBilling: s.ShippingSameAsBilling,
		AvailableShippingMethods:     toShippingMethods(s.AvailableShippingMethods),
		AvailablePaymentMethods:      toPaymentMethods(s.AvailablePaymentMethods),
		Totals:                       toTotalsResponse(s.Totals),
		IsGuestCheckout:              s.IsGuestCheckout,
	}
	if s.SelectedShippingMethod != nil {
		m := toShippingMethod(*s.SelectedShippingMethod)
		resp.SelectedShippingMethod = &m
	}
	if s.SelectedPaymentMethod != nil {
		m := toPaymentMethod(*s.SelectedPaymentMethod)
		resp.SelectedPaymentMethod = &m
	}
	if s.CustomerEmail != "" {
		resp.CustomerInfo = &checkoutCustomerResponse{Email: s.CustomerEmail}
	}
	return resp
}

func toOrderConfirmation(o *domain.OrderConfirmation) orderConfirmationResponse {
	return orderConfirmationResponse{
		OrderID:               o.OrderID,
		OrderNumber:           o.OrderNumber,
		OrderTotal:            money(o.Totals.Total),
		OrderStatus:           o.OrderStatus,
		PaymentStatus:         o.PaymentStatus,
		OrderDate:             o.OrderDate,
		EstimatedDeliveryDate: o.EstimatedDelivery,
		RequiresPayment:       o.RequiresPayment,
		Message:               o.Message,
	}
}
