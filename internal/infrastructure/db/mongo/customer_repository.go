package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/grandnode/mobile-api/internal/core/domain"
)

const collectionCustomers = "customers"

// CustomerRepository stores customers, guests included, one document per
// GUID. The refresh token slot lives inside the same document.
type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection(collectionCustomers)}
}

type customerDoc struct {
	GUID                string               `bson:"guid"`
	Email               string               `bson:"email,omitempty"`
	PasswordHash        string               `bson:"password_hash,omitempty"`
	FirstName           string               `bson:"first_name,omitempty"`
	LastName            string               `bson:"last_name,omitempty"`
	Active              bool                 `bson:"active"`
	Deleted             bool                 `bson:"deleted"`
	TwoFactorEnabled    bool                 `bson:"two_factor_enabled"`
	FailedLoginAttempts int                  `bson:"failed_login_attempts"`
	LockedOutUntil      time.Time            `bson:"locked_out_until,omitempty"`
	RefreshToken        *domain.RefreshToken `bson:"refresh_token,omitempty"`
	CreatedAt           time.Time            `bson:"created_at"`
	LastActivityAt      time.Time            `bson:"last_activity_at"`
}

func toCustomerDoc(c *domain.Customer) customerDoc {
	return customerDoc{
		GUID:                c.GUID.String(),
		Email:               c.Email,
		PasswordHash:        c.PasswordHash,
		FirstName:           c.FirstName,
		LastName:            c.LastName,
		Active:              c.Active,
		Deleted:             c.Deleted,
		TwoFactorEnabled:    c.TwoFactorEnabled,
		FailedLoginAttempts: c.FailedLoginAttempts,
		LockedOutUntil:      c.LockedOutUntil,
		RefreshToken:        c.RefreshToken,
		CreatedAt:           c.CreatedAt,
		LastActivityAt:      c.LastActivityAt,
	}
}

func (d customerDoc) toDomain() (*domain.Customer, error) {
	guid, err := uuid.Parse(d.GUID)
	if err != nil {
		return nil, fmt.Errorf("customer guid %q: %w", d.GUID, err)
	}
	c := &domain.Customer{
		GUID:                guid,
		Email:               d.Email,
		PasswordHash:        d.PasswordHash,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Active:              d.Active,
		Deleted:             d.Deleted,
		TwoFactorEnabled:    d.TwoFactorEnabled,
		FailedLoginAttempts: d.FailedLoginAttempts,
		LockedOutUntil:      d.LockedOutUntil,
		CreatedAt:           d.CreatedAt,
		LastActivityAt:      d.LastActivityAt,
	}
	if d.RefreshToken != nil {
		t := *d.RefreshToken
		t.OwnerID = guid
		c.RefreshToken = &t
	}
	return c, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toCustomerDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCustomerExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"guid": guid.String()})
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if email == "" {
		return nil, domain.ErrCustomerNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *CustomerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc customerDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain()
}

// Update rewrites the profile and login state. The refresh token slot is
// left untouched.
func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"active":                c.Active,
		"deleted":               c.Deleted,
		"two_factor_enabled":    c.TwoFactorEnabled,
		"failed_login_attempts": c.FailedLoginAttempts,
		"last_activity_at":      c.LastActivityAt,
	}
	unset := bson.M{}
	optional := map[string]string{
		"email":         c.Email,
		"password_hash": c.PasswordHash,
		"first_name":    c.FirstName,
		"last_name":     c.LastName,
	}
	for field, v := range optional {
		if v == "" {
			unset[field] = ""
		} else {
			set[field] = v
		}
	}
	if c.LockedOutUntil.IsZero() {
		unset["locked_out_until"] = ""
	} else {
		set["locked_out_until"] = c.LockedOutUntil
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"guid": c.GUID.String()}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCustomerExists
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, guid uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"guid": guid.String()}); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// SaveRefreshToken replaces the slot with a single document update, so the
// last writer wins.
func (r *CustomerRepository) SaveRefreshToken(ctx context.Context, owner uuid.UUID, token domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"guid": owner.String()},
		bson.M{"$set": bson.M{"refresh_token": token}},
	)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) GetRefreshToken(ctx context.Context, owner uuid.UUID) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		RefreshToken *domain.RefreshToken `bson:"refresh_token"`
	}
	opts := options.FindOne().SetProjection(bson.M{"refresh_token": 1})
	if err := r.col.FindOne(ctx, bson.M{"guid": owner.String()}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if doc.RefreshToken == nil {
		return nil, nil
	}
	doc.RefreshToken.OwnerID = owner
	return doc.RefreshToken, nil
}

func (r *CustomerRepository) ClearRefreshToken(ctx context.Context, owner uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"guid": owner.String()},
		bson.M{"$unset": bson.M{"refresh_token": ""}},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique GUID index and a unique email index that
// only covers customers with an email, so any number of guests can coexist.
func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "guid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$type": "string"}}),
		},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("customer indexes: %w", err)
	}
	return nil
}
