package models

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"plan-pleno/internal/interfaces"
)

// UserSavedActivity is an activity bookmarked by a user.
type UserSavedActivity struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ActivityID ActivityRef
	CreatedAt  time.Time
}

type UserSavedActivityRepository struct{}

func NewUserSavedActivityRepository() *UserSavedActivityRepository {
	return &UserSavedActivityRepository{}
}

// Save bookmarks the activity. Saving it twice fails with ErrDuplicate.
func (r *UserSavedActivityRepository) Save(ctx context.Context, q interfaces.Querier, userID uuid.UUID, activityID ActivityRef) (*UserSavedActivity, error) {
	saved := &UserSavedActivity{
		ID:         uuid.New(),
		UserID:     userID,
		ActivityID: activityID,
		CreatedAt:  time.Now().UTC(),
	}

	query, args, err := dialect.Insert("userSavedActivities").Rows(goqu.Record{
		"id":         saved.ID,
		"userId":     saved.UserID,
		"activityId": saved.ActivityID.String(),
		"createdAt":  saved.CreatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, translatePgError(err)
	}
	return saved, nil
}

// Remove deletes the bookmark, ErrNotFound if there was none.
func (r *UserSavedActivityRepository) Remove(ctx context.Context, q interfaces.Querier, userID uuid.UUID, activityID ActivityRef) error {
	query, args, err := dialect.Delete("userSavedActivities").
		Where(goqu.Ex{"userId": userID, "activityId": activityID.String()}).
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List pages through the bookmarks of a user, newest first, with the total count.
func (r *UserSavedActivityRepository) List(ctx context.Context, q interfaces.Querier, userID uuid.UUID, offset, limit int) ([]UserSavedActivity, int, error) {
	countQuery, countArgs, err := dialect.From("userSavedActivities").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"userId": userID}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := dialect.From("userSavedActivities").
		Select("id", "userId", "activityId", "createdAt").
		Where(goqu.Ex{"userId": userID}).
		Order(goqu.I("createdAt").Desc()).
		Offset(uint(offset)).Limit(uint(limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	saved := []UserSavedActivity{}
	for rows.Next() {
		var entry UserSavedActivity
		var activityID string
		if err := rows.Scan(&entry.ID, &entry.UserID, &activityID, &entry.CreatedAt); err != nil {
			return nil, 0, err
		}
		if entry.ActivityID, err = ParseActivityRef(activityID); err != nil {
			return nil, 0, err
		}
		saved = append(saved, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return saved, total, nil
}
