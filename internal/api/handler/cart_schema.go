package handler

type addToCartRequest struct {
	ProductID   string   `json:"productId"   validate:"required"`
	Quantity    *int     `json:"quantity"`
	CustomPrice *float64 `json:"customPrice" validate:"omitempty,gte=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"totalPrice"`
	Currency    string `json:"currency"`
}

type totalsResponse struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discountAmount"`
	ShippingCost   string `json:"shippingCost"`
	TaxAmount      string `json:"taxAmount"`
	PaymentFee     string `json:"paymentFee"`
	Total          string `json:"total"`
	Currency       string `json:"currency"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	Totals     totalsResponse     `json:"totals"`
	TotalItems int                `json:"totalItems"`
	IsEmpty    bool               `json:"isEmpty"`
}
