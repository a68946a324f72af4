package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const collectionCarts = "carts"

// CartRepository keeps one document per customer GUID holding the ordered
// cart lines. Line edits are single positional updates.
type CartRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(collectionCarts), now: time.Now}
}

type cartDoc struct {
	OwnerGUID string        `bson:"owner_guid"`
	Lines     []cartLineDoc `bson:"lines"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type cartLineDoc struct {
	ID           string                `bson:"id"`
	ProductID    string                `bson:"product_id"`
	ProductName  string                `bson:"product_name"`
	Quantity     int                   `bson:"quantity"`
	CatalogPrice primitive.Decimal128  `bson:"catalog_price"`
	EnteredPrice *primitive.Decimal128 `bson:"entered_price"`
}

func toCartLineDoc(l domain.CartLine) cartLineDoc {
	return cartLineDoc{
		ID:           l.ID,
		ProductID:    l.ProductID,
		ProductName:  l.ProductName,
		Quantity:     l.Quantity,
		CatalogPrice: toDecimal128(l.CatalogPrice),
		EnteredPrice: toDecimal128Ptr(l.EnteredPrice),
	}
}

func (d cartLineDoc) toDomain() (domain.CartLine, error) {
	catalog, err := fromDecimal128(d.CatalogPrice)
	if err != nil {
		return domain.CartLine{}, err
	}
	entered, err := fromDecimal128Ptr(d.EnteredPrice)
	if err != nil {
		return domain.CartLine{}, err
	}
	return domain.CartLine{
		ID:           d.ID,
		ProductID:    d.ProductID,
		ProductName:  d.ProductName,
		Quantity:     d.Quantity,
		CatalogPrice: catalog,
		EnteredPrice: entered,
	}, nil
}

func (r *CartRepository) Lines(ctx context.Context, owner uuid.UUID) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc cartDoc
	if err := r.col.FindOne(ctx, bson.M{"owner_guid": owner.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, ld := range doc.Lines {
		l, err := ld.toDomain()
		if err != nil {
			return nil, fmt.Errorf("get cart: line %s: %w", ld.ID, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// AddLine first tries to increment a line with the same product and entered
// price; when none matches the line is appended, creating the cart if needed.
func (r *CartRepository) AddLine(ctx context.Context, owner uuid.UUID, line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toCartLineDoc(line)
	now := r.now().UTC()

	match := bson.M{"product_id": doc.ProductID, "entered_price": doc.EnteredPrice}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"owner_guid": owner.String(), "lines": bson.M{"$elemMatch": match}},
		bson.M{
			"$inc": bson.M{"lines.$.quantity": doc.Quantity},
			"$set": bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return fmt.Errorf("merge cart line: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	_, err = r.col.UpdateOne(ctx,
		bson.M{"owner_guid": owner.String()},
		bson.M{
			"$push": bson.M{"lines": doc},
			"$set":  bson.M{"updated_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, owner uuid.UUID, lineID string, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"owner_guid": owner.String(), "lines.id": lineID},
		bson.M{"$set": bson.M{
			"lines.$.quantity": quantity,
			"updated_at":       r.now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) RemoveLine(ctx context.Context, owner uuid.UUID, lineID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"owner_guid": owner.String(), "lines.id": lineID},
		bson.M{
			"$pull": bson.M{"lines": bson.M{"id": lineID}},
			"$set":  bson.M{"updated_at": r.now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// Clear deletes the cart document. Clearing an absent cart is not an error.
func (r *CartRepository) Clear(ctx context.Context, owner uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"owner_guid": owner.String()}); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// EnsureIndexes creates the owner index and expires carts untouched for 90
// days.
func (r *CartRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_guid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("cart indexes: %w", err)
	}
	return nil
}
