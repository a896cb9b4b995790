package models

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"plan-pleno/internal/interfaces"
)

const (
	MinPreferenceWeight     = 0.0
	MaxPreferenceWeight     = 10.0
	DefaultPreferenceWeight = 1.0
)

// UserPreference is the interest of a user in a category, weighted 0 to 10.
type UserPreference struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID CategoryRef
	Weight     float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type UserPreferenceRepository struct{}

func NewUserPreferenceRepository() *UserPreferenceRepository {
	return &UserPreferenceRepository{}
}

// Upsert sets the weight of a category for the user, creating the preference
// on first use.
func (r *UserPreferenceRepository) Upsert(ctx context.Context, q interfaces.Querier, userID uuid.UUID, categoryID CategoryRef, weight float64) (*UserPreference, error) {
	if weight < MinPreferenceWeight || weight > MaxPreferenceWeight {
		return nil, &ValidationError{
			Entity: "preference",
			Err:    fmt.Errorf("weight %v outside [%v, %v]", weight, MinPreferenceWeight, MaxPreferenceWeight),
		}
	}

	now := time.Now().UTC()
	preference := &UserPreference{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Weight:     weight,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query, args, err := dialect.Insert("userPreferences").Rows(goqu.Record{
		"id":         preference.ID,
		"userId":     preference.UserID,
		"categoryId": preference.CategoryID.String(),
		"weight":     preference.Weight,
		"createdAt":  preference.CreatedAt,
		"updatedAt":  preference.UpdatedAt,
	}).OnConflict(goqu.DoUpdate(`"userId", "categoryId"`, goqu.Record{
		"weight":    goqu.L(`EXCLUDED."weight"`),
		"updatedAt": goqu.L(`EXCLUDED."updatedAt"`),
	})).Returning("id", "createdAt").Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&preference.ID, &preference.CreatedAt); err != nil {
		return nil, translatePgError(err)
	}
	return preference, nil
}

// List returns every preference of the user, heaviest first.
func (r *UserPreferenceRepository) List(ctx context.Context, q interfaces.Querier, userID uuid.UUID) ([]UserPreference, error) {
	query, args, err := dialect.From("userPreferences").
		Select("id", "userId", "categoryId", "weight", "createdAt", "updatedAt").
		Where(goqu.Ex{"userId": userID}).
		Order(goqu.I("weight").Desc(), goqu.I("categoryId").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := []UserPreference{}
	for rows.Next() {
		var preference UserPreference
		var categoryID string
		if err := rows.Scan(&preference.ID, &preference.UserID, &categoryID, &preference.Weight, &preference.CreatedAt, &preference.UpdatedAt); err != nil {
			return nil, err
		}
		if preference.CategoryID, err = ParseCategoryRef(categoryID); err != nil {
			return nil, err
		}
		preferences = append(preferences, preference)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}
