package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finwave/cards-api/internal/core/domain"
)

const collectionCards = "cards"

var lastFourTerm = regexp.MustCompile(`^\d{4}$`)

// CardRepository implements ports.CardRepository using MongoDB. Balances are
// stored as decimal strings so no precision is ever lost in transit.
type CardRepository struct {
	col *mongo.Collection
}

func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{col: db.Collection(collectionCards)}
}

type mongoCard struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	UserID         primitive.ObjectID `bson:"user_id"`
	CardOwner      string             `bson:"card_owner"`
	CardNumber     string             `bson:"card_number"`
	LastFourDigits string             `bson:"last_four_digits"`
	ExpiryDate     time.Time          `bson:"expiry_date"`
	Status         string             `bson:"status"`
	Balance        string             `bson:"balance"`
	CreatedAt      int64              `bson:"created_at"`
	UpdatedAt      int64              `bson:"updated_at"`
}

func (r *CardRepository) Create(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	mc, err := toMongoCard(card)
	if err != nil {
		return nil, err
	}

	res, err := r.col.InsertOne(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("insert card: %w", err)
	}

	out := *card
	out.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &out, nil
}

func (r *CardRepository) FindByID(ctx context.Context, id string) (*domain.Card, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCardNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *CardRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Card, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCardNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrCardNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "user_id": uid})
}

func (r *CardRepository) FindByUser(ctx context.Context, userID string, page, size int) ([]domain.Card, int64, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, 0, domain.ErrUserNotFound
	}
	return r.findPage(ctx, bson.M{"user_id": uid}, page, size)
}

// SearchByUser matches a 4-digit term against last_four_digits exactly and
// any other term against card_owner as a case-insensitive substring,
// mirroring the two scoped search queries of the card store contract.
func (r *CardRepository) SearchByUser(ctx context.Context, userID, term string, page, size int) ([]domain.Card, int64, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, 0, domain.ErrUserNotFound
	}

	filter := bson.M{"user_id": uid}
	if lastFourTerm.MatchString(term) {
		filter["last_four_digits"] = term
	} else {
		filter["card_owner"] = primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	}
	return r.findPage(ctx, filter, page, size)
}

func (r *CardRepository) FindAll(ctx context.Context, page, size int) ([]domain.Card, int64, error) {
	return r.findPage(ctx, bson.M{}, page, size)
}

func (r *CardRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	return r.updateOne(ctx, id, bson.M{"balance": balance.String()})
}

func (r *CardRepository) UpdateStatus(ctx context.Context, id string, status domain.CardStatus) error {
	return r.updateOne(ctx, id, bson.M{"status": string(status)})
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCardNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.col.DeleteMany(ctx, bson.M{"user_id": uid})
	if err != nil {
		return fmt.Errorf("delete cards by user: %w", err)
	}
	return nil
}

// ExpireOlderThan marks every ACTIVE or BLOCKED card past its expiry date as
// EXPIRED in a single update.
func (r *CardRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"status":      bson.M{"$in": bson.A{string(domain.CardActive), string(domain.CardBlocked)}},
		"expiry_date": bson.M{"$lt": cutoff},
	}
	update := bson.M{"$set": bson.M{
		"status":     string(domain.CardExpired),
		"updated_at": time.Now().Unix(),
	}}

	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("expire cards: %w", err)
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the owner and search indexes.
func (r *CardRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_four_digits", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_date", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *CardRepository) findOne(ctx context.Context, filter bson.M) (*domain.Card, error) {
	var mc mongoCard
	if err := r.col.FindOne(ctx, filter).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("find card: %w", err)
	}
	return fromMongoCard(&mc)
}

func (r *CardRepository) findPage(ctx context.Context, filter bson.M, page, size int) ([]domain.Card, int64, error) {
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count cards: %w", err)
	}

	skip := int64(page-1) * int64(size)
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(skip).
		SetLimit(int64(size))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find cards: %w", err)
	}
	defer cur.Close(ctx)

	var cards []domain.Card
	for cur.Next(ctx) {
		var mc mongoCard
		if err := cur.Decode(&mc); err != nil {
			return nil, 0, fmt.Errorf("decode card: %w", err)
		}
		card, err := fromMongoCard(&mc)
		if err != nil {
			return nil, 0, err
		}
		cards = append(cards, *card)
	}
	return cards, total, cur.Err()
}

func (r *CardRepository) updateOne(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCardNotFound
	}

	set["updated_at"] = time.Now().Unix()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func toMongoCard(c *domain.Card) (mongoCard, error) {
	uid, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return mongoCard{}, domain.ErrUserNotFound
	}

	mc := mongoCard{
		UserID:         uid,
		CardOwner:      c.CardOwner,
		CardNumber:     c.CardNumber,
		LastFourDigits: c.LastFourDigits,
		ExpiryDate:     c.ExpiryDate.UTC(),
		Status:         string(c.Status),
		Balance:        c.Balance.String(),
		CreatedAt:      c.CreatedAt.Unix(),
		UpdatedAt:      c.UpdatedAt.Unix(),
	}
	if oid, err := primitive.ObjectIDFromHex(c.ID); err == nil {
		mc.ID = oid
	}
	return mc, nil
}

func fromMongoCard(mc *mongoCard) (*domain.Card, error) {
	balance, err := decimal.NewFromString(mc.Balance)
	if err != nil {
		return nil, fmt.Errorf("decode card balance %q: %w", mc.Balance, err)
	}

	return &domain.Card{
		ID:             mc.ID.Hex(),
		UserID:         mc.UserID.Hex(),
		CardOwner:      mc.CardOwner,
		CardNumber:     mc.CardNumber,
		LastFourDigits: mc.LastFourDigits,
		ExpiryDate:     mc.ExpiryDate,
		Status:         domain.CardStatus(mc.Status),
		Balance:        balance,
		CreatedAt:      unixToTime(mc.CreatedAt),
		UpdatedAt:      unixToTime(mc.UpdatedAt),
	}, nil
}
