package models

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"plan-pleno/internal/interfaces"
)

// AgeRanges are the brackets a profile may declare.
var AgeRanges = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

// UserProfile is the public face of a user, one per user.
type UserProfile struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	DisplayName    string
	Bio            *string
	AgeRange       *string
	ProfilePicture *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserProfileRepository struct{}

func NewUserProfileRepository() *UserProfileRepository {
	return &UserProfileRepository{}
}

func (r *UserProfileRepository) Create(ctx context.Context, q interfaces.Querier, profile *UserProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now

	query, args, err := dialect.Insert("userProfiles").Rows(goqu.Record{
		"id":             profile.ID,
		"userId":         profile.UserID,
		"displayName":    profile.DisplayName,
		"bio":            profile.Bio,
		"ageRange":       profile.AgeRange,
		"profilePicture": profile.ProfilePicture,
		"createdAt":      profile.CreatedAt,
		"updatedAt":      profile.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *UserProfileRepository) FindByUserID(ctx context.Context, q interfaces.Querier, userID uuid.UUID) (*UserProfile, error) {
	query, args, err := dialect.From("userProfiles").
		Select("id", "userId", "displayName", "bio", "ageRange", "profilePicture", "createdAt", "updatedAt").
		Where(goqu.Ex{"userId": userID}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{}
	err = q.QueryRow(ctx, query, args...).Scan(
		&profile.ID, &profile.UserID, &profile.DisplayName, &profile.Bio,
		&profile.AgeRange, &profile.ProfilePicture, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
