package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-pleno/internal/utils"
)

const subcategoriesCollection = "subcategories"

// Subcategory refines one or more categories.
type Subcategory struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name             string               `bson:"name" json:"name" validate:"required"`
	Description      string               `bson:"description" json:"description" validate:"required"`
	IconURL          string               `bson:"iconUrl" json:"iconUrl"`
	ParentCategories []primitive.ObjectID `bson:"parentCategories" json:"parentCategories"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// SubcategoryStore reads and writes the subcategories collection.
type SubcategoryStore struct {
	coll *mongo.Collection
}

func NewSubcategoryStore(db *mongo.Database) *SubcategoryStore {
	return &SubcategoryStore{coll: db.Collection(subcategoriesCollection)}
}

func (s *SubcategoryStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parentCategories", Value: 1}}},
	}
}

func (s *SubcategoryStore) Create(ctx context.Context, subcategory *Subcategory) error {
	subcategory.Name = strings.TrimSpace(subcategory.Name)
	subcategory.Description = strings.TrimSpace(subcategory.Description)
	if err := utils.GetValidator().Validate.Struct(subcategory); err != nil {
		return &ValidationError{Entity: "subcategory", Err: err}
	}
	if subcategory.ParentCategories == nil {
		subcategory.ParentCategories = []primitive.ObjectID{}
	}

	now := time.Now().UTC()
	subcategory.CreatedAt, subcategory.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, subcategory)
	if err != nil {
		return translateMongoError(err)
	}
	subcategory.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByName matches the whole name ignoring case.
func (s *SubcategoryStore) FindByName(ctx context.Context, name string) (*Subcategory, error) {
	var subcategory Subcategory
	if err := s.coll.FindOne(ctx, nameFilter(name)).Decode(&subcategory); err != nil {
		return nil, translateMongoError(err)
	}
	return &subcategory, nil
}

// FindByCategoryID lists the subcategories that name categoryID as a parent.
func (s *SubcategoryStore) FindByCategoryID(ctx context.Context, categoryID primitive.ObjectID) ([]Subcategory, error) {
	return findAll[Subcategory](ctx, s.coll, bson.M{"parentCategories": categoryID})
}

// findAll decodes every document matching filter. An empty result is an empty slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
