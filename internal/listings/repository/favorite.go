package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	listingserrors "skillex/internal/listings/errors"
	"skillex/pkg/config"
	mongotx "skillex/pkg/db/mongo"
	"skillex/pkg/model"
)

const FavoritesCollectionName = "favorites"

// FavoriteRepository stores (user, listing) bookmarks. A unique index on
// the pair rejects double-favorites at the storage level.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	Delete(ctx context.Context, userID, listingID string) error
	DeleteByListing(ctx context.Context, listingID string) error
	FindListingIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type mongoFavoriteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFavoriteRepository(cfg *config.Config) FavoriteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFavoriteRepository{
		cfg:        cfg,
		collection: db.Collection(FavoritesCollectionName),
	}
}

func (r *mongoFavoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	favorite.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err := r.collection.InsertOne(ctx, favorite)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return listingserrors.ErrDuplicateFavorite
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

func (r *mongoFavoriteRepository) Delete(ctx context.Context, userID, listingID string) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if result.DeletedCount == 0 {
		return listingserrors.ErrFavoriteNotFound
	}
	return nil
}

func (r *mongoFavoriteRepository) DeleteByListing(ctx context.Context, listingID string) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return fmt.Errorf("failed to delete favorites for listing: %w", err)
	}
	return nil
}

func (r *mongoFavoriteRepository) FindListingIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find favorites: %w", err)
	}
	defer cursor.Close(ctx)

	var favorites []*model.Favorite
	if err = cursor.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}

	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ListingID)
	}
	return ids, nil
}
