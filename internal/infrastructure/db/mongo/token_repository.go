package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finwave/cards-api/internal/core/domain"
)

const collectionTokens = "tokens"

// TokenRepository implements ports.TokenRepository using MongoDB.
type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionTokens)}
}

type mongoToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	Type      string             `bson:"type"`
	Revoked   bool               `bson:"revoked"`
	Expired   bool               `bson:"expired"`
	ExpiresAt time.Time          `bson:"expires_at"`
	UserID    primitive.ObjectID `bson:"user_id"`
	CreatedAt int64              `bson:"created_at"`
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) (*domain.Token, error) {
	uid, err := primitive.ObjectIDFromHex(token.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	mt := mongoToken{
		Token:     token.Token,
		Type:      string(token.Type),
		Revoked:   token.Revoked,
		Expired:   token.Expired,
		ExpiresAt: token.ExpiresAt.UTC(),
		UserID:    uid,
		CreatedAt: token.CreatedAt.Unix(),
	}

	res, err := r.col.InsertOne(ctx, mt)
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}

	out := *token
	out.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &out, nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, raw string) (*domain.Token, error) {
	var mt mongoToken
	if err := r.col.FindOne(ctx, bson.M{"token": raw}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	return &domain.Token{
		ID:        mt.ID.Hex(),
		Token:     mt.Token,
		Type:      domain.TokenType(mt.Type),
		Revoked:   mt.Revoked,
		Expired:   mt.Expired,
		ExpiresAt: mt.ExpiresAt,
		UserID:    mt.UserID.Hex(),
		CreatedAt: unixToTime(mt.CreatedAt),
	}, nil
}

// MarkUsed sets both flags together; a rotated or logged-out token becomes
// permanently unusable in one write.
func (r *TokenRepository) MarkUsed(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTokenNotFound
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"revoked": true,
		"expired": true,
	}})
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"user_id": uid}); err != nil {
		return fmt.Errorf("delete tokens by user: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique raw-token index and the per-user index.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
