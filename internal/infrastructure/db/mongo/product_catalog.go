package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const collectionProducts = "products"

// ProductCatalog is a read-only view over the storefront products
// collection.
type ProductCatalog struct {
	col *mongo.Collection
}

func NewProductCatalog(db *mongo.Database) *ProductCatalog {
	return &ProductCatalog{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Sku           string               `bson:"sku"`
	Price         primitive.Decimal128 `bson:"price"`
	Published     bool                 `bson:"published"`
	StockQuantity int                  `bson:"stock_quantity"`
}

func (c *ProductCatalog) FindProduct(ctx context.Context, productID string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := c.col.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	price, err := fromDecimal128(doc.Price)
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", productID, err)
	}
	return &domain.Product{
		ID:            doc.ID,
		Name:          doc.Name,
		Sku:           doc.Sku,
		Price:         price,
		Published:     doc.Published,
		StockQuantity: doc.StockQuantity,
	}, nil
}
