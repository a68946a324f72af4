package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/grandnode/mobile-api/internal/core/domain"
	"github.com/grandnode/mobile-api/internal/core/ports"
)

// CartService manages the shopping cart behind both guest and registered
// sessions. Lines snapshot the catalog price when added or updated.
type CartService struct {
	carts     ports.CartRepository
	catalog   ports.ProductCatalog
	discounts ports.DiscountProvider
	currency  string
	log       zerolog.Logger
}

func NewCartService(carts ports.CartRepository, catalog ports.ProductCatalog, discounts ports.DiscountProvider, currency string, log zerolog.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, discounts: discounts, currency: currency, log: log}
}

var _ ports.CartService = (*CartService)(nil)

func (s *CartService) GetCart(ctx context.Context, id domain.SessionIdentity) (*ports.CartView, error) {
	return s.view(ctx, id.SubjectID, "Failed to retrieve cart")
}

func (s *CartService) AddItem(ctx context.Context, id domain.SessionIdentity, in ports.AddToCartInput) (*ports.CartView, error) {
	const failMsg = "Failed to add item to cart"
	if in.Quantity <= 0 {
		return nil, domain.Validation("Quantity must be greater than 0",
			domain.FieldError{Field: "quantity", Message: "must be greater than 0"})
	}
	if in.EnteredPrice != nil && in.EnteredPrice.IsNegative() {
		return nil, domain.Validation("Invalid add to cart data",
			domain.FieldError{Field: "customPrice", Message: "must not be negative"})
	}

	product, err := s.availableProduct(ctx, in.ProductID, failMsg)
	if err != nil {
		return nil, err
	}
	// AddLine may merge into an existing line, so stock is checked against
	// everything already in the cart for this product.
	lines, err := s.carts.Lines(ctx, id.SubjectID)
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	if productQuantity(lines, product.ID, "")+in.Quantity > product.StockQuantity {
		return nil, domain.Validation("Requested quantity exceeds available stock",
			domain.FieldError{Field: "quantity", Message: "exceeds available stock"})
	}

	line := domain.CartLine{
		ID:           uuid.NewString(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     in.Quantity,
		CatalogPrice: product.Price,
		EnteredPrice: in.EnteredPrice,
	}
	if err := s.carts.AddLine(ctx, id.SubjectID, line); err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	s.log.Debug().Str("customer_guid", id.SubjectID.String()).Str("product_id", product.ID).Int("quantity", in.Quantity).Msg("cart item added")
	return s.view(ctx, id.SubjectID, failMsg)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, id domain.SessionIdentity, lineID string, quantity int) (*ports.CartView, error) {
	const failMsg = "Failed to update cart item"
	if quantity <= 0 {
		return s.RemoveItem(ctx, id, lineID)
	}

	lines, err := s.carts.Lines(ctx, id.SubjectID)
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	line, ok := findLine(lines, lineID)
	if !ok {
		return nil, domain.NotFound("Cart item not found")
	}
	product, err := s.availableProduct(ctx, line.ProductID, failMsg)
	if err != nil {
		return nil, err
	}
	if productQuantity(lines, product.ID, lineID)+quantity > product.StockQuantity {
		return nil, domain.Validation("Requested quantity exceeds available stock",
			domain.FieldError{Field: "quantity", Message: "exceeds available stock"})
	}

	err = s.carts.UpdateQuantity(ctx, id.SubjectID, lineID, quantity)
	if errors.Is(err, domain.ErrCartItemNotFound) {
		return nil, domain.NotFound("Cart item not found")
	}
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	return s.view(ctx, id.SubjectID, failMsg)
}

func (s *CartService) RemoveItem(ctx context.Context, id domain.SessionIdentity, lineID string) (*ports.CartView, error) {
	const failMsg = "Failed to remove cart item"
	err := s.carts.RemoveLine(ctx, id.SubjectID, lineID)
	if errors.Is(err, domain.ErrCartItemNotFound) {
		return nil, domain.NotFound("Cart item not found")
	}
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	return s.view(ctx, id.SubjectID, failMsg)
}

func (s *CartService) Clear(ctx context.Context, id domain.SessionIdentity) (*ports.CartView, error) {
	const failMsg = "Failed to clear cart"
	if err := s.carts.Clear(ctx, id.SubjectID); err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	return s.view(ctx, id.SubjectID, failMsg)
}

func (s *CartService) Totals(ctx context.Context, id domain.SessionIdentity) (domain.Totals, error) {
	view, err := s.view(ctx, id.SubjectID, "Failed to calculate cart totals")
	if err != nil {
		return domain.Totals{}, err
	}
	return view.Totals, nil
}

func (s *CartService) availableProduct(ctx context.Context, productID, failMsg string) (*domain.Product, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		return nil, domain.NotFound("Product not found")
	}
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	if !product.Published {
		return nil, domain.InvalidState("Product not available")
	}
	return product, nil
}

// view renders the cart. Cart totals never include shipping, tax or a
// payment fee; those only exist inside checkout.
func (s *CartService) view(ctx context.Context, owner uuid.UUID, failMsg string) (*ports.CartView, error) {
	lines, err := s.carts.Lines(ctx, owner)
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	discount, err := s.discounts.Discount(ctx, owner, lines)
	if err != nil {
		return nil, domain.Internal(failMsg, err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return &ports.CartView{
		Lines:      lines,
		Totals:     CalculateTotals(lines, TotalsInput{Discount: discount, Currency: s.currency}),
		TotalItems: TotalItems(lines),
		IsEmpty:    len(lines) == 0,
	}, nil
}

func findLine(lines []domain.CartLine, lineID string) (domain.CartLine, bool) {
	for _, l := range lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

// productQuantity sums the quantity of productID over all lines except
// skipLineID.
func productQuantity(lines []domain.CartLine, productID, skipLineID string) int {
	n := 0
	for _, l := range lines {
		if l.ProductID == productID && l.ID != skipLineID {
			n += l.Quantity
		}
	}
	return n
}
