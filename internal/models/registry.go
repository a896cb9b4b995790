// Package models holds the entities of both stores: the catalog documents
// (categories, subcategories, activities, reviews) and the relational identity
// and social graph tables (users and what hangs off them).
package models

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"plan-pleno/internal/interfaces"
)

// indexedStore is a document store whose collection carries indexes.
type indexedStore interface {
	Indexes() []mongo.IndexModel
}

// NewRelationalSchema registers every table, users first, and then the
// associations between them.
func NewRelationalSchema() (*Schema, error) {
	schema := NewSchema()
	schema.Register(usersTable)
	schema.Register(userProfilesTable)
	schema.Register(userRelationshipsTable)
	schema.Register(userSavedActivitiesTable)
	schema.Register(userPreferencesTable)

	associations := []Association{
		{Table: "userProfiles", Column: "userId", RefTable: "users"},
		{Table: "userRelationships", Column: "followerId", RefTable: "users"},
		{Table: "userRelationships", Column: "followedId", RefTable: "users"},
		{Table: "userSavedActivities", Column: "userId", RefTable: "users"},
		{Table: "userPreferences", Column: "userId", RefTable: "users"},
	}
	for _, association := range associations {
		if err := schema.Associate(association.Table, association.Column, association.RefTable); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

// InitModels prepares both stores. In development the relational schema is synced;
// a failing sync is logged and does not stop the start. The document indexes are
// created concurrently and the first failure is returned.
func InitModels(ctx context.Context, development bool, pool interfaces.PgxPoolIface, db *mongo.Database) error {
	schema, err := NewRelationalSchema()
	if err != nil {
		log.Error("Error initializing models: ", err)
		return err
	}

	if development {
		if err := schema.Sync(ctx, pool); err != nil {
			log.Error("Error syncing PostgreSQL models: ", err)
		}
	}

	if err := SyncIndexes(ctx, db); err != nil {
		log.Error("Error initializing models: ", err)
		return err
	}

	log.Info("Models initialized successfully")
	return nil
}

// SyncIndexes creates the indexes of the four document collections concurrently.
func SyncIndexes(ctx context.Context, db *mongo.Database) error {
	collections := map[string]indexedStore{
		categoriesCollection:    NewCategoryStore(db),
		subcategoriesCollection: NewSubcategoryStore(db),
		activitiesCollection:    NewActivityStore(db),
		reviewsCollection:       NewReviewStore(db),
	}

	g, gctx := errgroup.WithContext(ctx)
	for name, store := range collections {
		name, indexes := name, store.Indexes()
		g.Go(func() error {
			if _, err := db.Collection(name).Indexes().CreateMany(gctx, indexes); err != nil {
				return fmt.Errorf("sync indexes of %s: %w", name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
