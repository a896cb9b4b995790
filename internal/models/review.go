package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-pleno/internal/utils"
)

const reviewsCollection = "reviews"

// Review is a thumbs up (Rating true) or down left by a user on an activity.
// UserID is the relational user id; nothing enforces that it exists.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActivityID primitive.ObjectID `bson:"activityId" json:"activityId"`
	UserID     string             `bson:"userId" json:"userId" validate:"required"`
	Rating     bool               `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment" validate:"required"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ReviewStats counts the ratings of one activity.
type ReviewStats struct {
	ThumbsUp   int
	ThumbsDown int
}

// ReviewStore reads and writes the reviews collection.
type ReviewStore struct {
	coll *mongo.Collection
}

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{coll: db.Collection(reviewsCollection)}
}

func (s *ReviewStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "activityId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}
}

func (s *ReviewStore) Create(ctx context.Context, review *Review) error {
	review.Comment = strings.TrimSpace(review.Comment)
	if err := utils.GetValidator().Validate.Struct(review); err != nil {
		return &ValidationError{Entity: "review", Err: err}
	}
	if review.ActivityID.IsZero() {
		return &ValidationError{Entity: "review", Err: errors.New("activityId is required")}
	}

	now := time.Now().UTC()
	review.CreatedAt, review.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, review)
	if err != nil {
		return translateMongoError(err)
	}
	review.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// FindByActivityID lists the reviews of an activity, newest first.
func (s *ReviewStore) FindByActivityID(ctx context.Context, activityID primitive.ObjectID) ([]Review, error) {
	return findAll[Review](ctx, s.coll, bson.M{"activityId": activityID}, newestFirst)
}

// FindByUserID lists the reviews written by a user, newest first.
func (s *ReviewStore) FindByUserID(ctx context.Context, userID string) ([]Review, error) {
	return findAll[Review](ctx, s.coll, bson.M{"userId": userID}, newestFirst)
}

// GetReviewStats groups the reviews of an activity by rating.
func (s *ReviewStore) GetReviewStats(ctx context.Context, activityID primitive.ObjectID) (ReviewStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "activityId", Value: activityID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$rating"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return ReviewStats{}, err
	}

	var groups []struct {
		Rating bool `bson:"_id"`
		Count  int  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return ReviewStats{}, err
	}

	var stats ReviewStats
	for _, group := range groups {
		if group.Rating {
			stats.ThumbsUp = group.Count
		} else {
			stats.ThumbsDown = group.Count
		}
	}
	return stats, nil
}

// DeleteByIDs removes the reviews with the given ids and returns how many were removed.
func (s *ReviewStore) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Restore inserts previously read reviews again, keeping their ids and timestamps.
func (s *ReviewStore) Restore(ctx context.Context, reviews []Review) error {
	if len(reviews) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(reviews))
	for i := range reviews {
		documents = append(documents, reviews[i])
	}

	_, err := s.coll.InsertMany(ctx, documents, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}
