package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	listingserrors "skillex/internal/listings/errors"
	"skillex/pkg/config"
	mongotx "skillex/pkg/db/mongo"
	"skillex/pkg/model"
)

const CollectionName = "listings"

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error)
	Search(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, error)
	CountSearch(ctx context.Context, filter *model.ListingFilter) (int64, error)
	Update(ctx context.Context, id string, fields bson.M) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AdjustFavoritesCount(ctx context.Context, id string, delta int) error
	AddImage(ctx context.Context, id string, url string, maxImages int) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		listing.ID = oid.Hex()
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	var listing model.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return &listing, nil
}

func (r *mongoListingRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Listing, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, oid)
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func (r *mongoListingRepository) Search(ctx context.Context, filter *model.ListingFilter, limit int, skip int64) ([]*model.Listing, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(buildSort(filter)).
		SetLimit(int64(limit)).
		SetSkip(skip)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []*model.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func (r *mongoListingRepository) CountSearch(ctx context.Context, filter *model.ListingFilter) (int64, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func buildSearchFilter(filter *model.ListingFilter) bson.M {
	query := bson.M{}

	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			price["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			price["$lte"] = *filter.MaxPrice
		}
		query["price"] = price
	}
	if filter.LocationType != "" {
		query["location.type"] = filter.LocationType
	}
	if filter.City != "" {
		query["location.city"] = filter.City
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.TeacherID != "" {
		query["teacher_id"] = filter.TeacherID
	}

	return query
}

func buildSort(filter *model.ListingFilter) bson.D {
	switch filter.Sort {
	case "price_low":
		return bson.D{{Key: "price", Value: 1}}
	case "price_high":
		return bson.D{{Key: "price", Value: -1}}
	case "popular":
		return bson.D{{Key: "favorites_count", Value: -1}, {Key: "views", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *mongoListingRepository) Update(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) IncrementViews(ctx context.Context, id string) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *mongoListingRepository) AdjustFavoritesCount(ctx context.Context, id string, delta int) error {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{"favorites_count": delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust favorites count: %w", err)
	}
	return nil
}

// AddImage appends url only while the listing holds fewer than maxImages.
// Returns false when the slot check failed, so callers can distinguish a
// full gallery from a missing listing.
func (r *mongoListingRepository) AddImage(ctx context.Context, id string, url string, maxImages int) (bool, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":                                 objectID,
		fmt.Sprintf("images.%d", maxImages-1): bson.M{"$exists": false},
	}
	update := bson.M{
		"$push": bson.M{"images": url},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to add image: %w", err)
	}
	return result.MatchedCount == 1, nil
}

func (r *mongoListingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings by status: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := mongotx.OpContext(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
