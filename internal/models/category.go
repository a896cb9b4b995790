package models

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-pleno/internal/utils"
)

const categoriesCollection = "categories"

// Category is a top level grouping of activities.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	IconURL     string             `bson:"iconUrl" json:"iconUrl"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CategoryStore reads and writes the categories collection.
type CategoryStore struct {
	coll *mongo.Collection
}

func NewCategoryStore(db *mongo.Database) *CategoryStore {
	return &CategoryStore{coll: db.Collection(categoriesCollection)}
}

func (s *CategoryStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
}

// Create trims and validates the category, stamps it and inserts it.
func (s *CategoryStore) Create(ctx context.Context, category *Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Description = strings.TrimSpace(category.Description)
	if err := utils.GetValidator().Validate.Struct(category); err != nil {
		return &ValidationError{Entity: "category", Err: err}
	}

	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, category)
	if err != nil {
		return translateMongoError(err)
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns ErrNotFound when no category has the id.
func (s *CategoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	var category Category
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translateMongoError(err)
	}
	return &category, nil
}

// FindByName matches the whole name ignoring case.
func (s *CategoryStore) FindByName(ctx context.Context, name string) (*Category, error) {
	var category Category
	if err := s.coll.FindOne(ctx, nameFilter(name)).Decode(&category); err != nil {
		return nil, translateMongoError(err)
	}
	return &category, nil
}

// nameFilter builds an anchored, case insensitive match on the name field.
// Regex metacharacters in name are matched literally.
func nameFilter(name string) bson.M {
	return bson.M{"name": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(name) + "$",
		Options: "i",
	}}
}
