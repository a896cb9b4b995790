package models

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"plan-pleno/internal/interfaces"
)

// UserRelationship records that FollowerID follows FollowedID.
type UserRelationship struct {
	ID         uuid.UUID
	FollowerID uuid.UUID
	FollowedID uuid.UUID
	CreatedAt  time.Time
}

// Connection is a user on the other end of a relationship, with the profile
// fields needed to list it.
type Connection struct {
	UserID         uuid.UUID
	DisplayName    string
	ProfilePicture *string
	Since          time.Time
}

type UserRelationshipRepository struct{}

func NewUserRelationshipRepository() *UserRelationshipRepository {
	return &UserRelationshipRepository{}
}

// Follow stores the relationship. Following twice fails with ErrDuplicate.
func (r *UserRelationshipRepository) Follow(ctx context.Context, q interfaces.Querier, followerID, followedID uuid.UUID) (*UserRelationship, error) {
	relationship := &UserRelationship{
		ID:         uuid.New(),
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}

	query, args, err := dialect.Insert("userRelationships").Rows(goqu.Record{
		"id":         relationship.ID,
		"followerId": relationship.FollowerID,
		"followedId": relationship.FollowedID,
		"createdAt":  relationship.CreatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, translatePgError(err)
	}
	return relationship, nil
}

// Unfollow removes the relationship, ErrNotFound if there was none.
func (r *UserRelationshipRepository) Unfollow(ctx context.Context, q interfaces.Querier, followerID, followedID uuid.UUID) error {
	query, args, err := dialect.Delete("userRelationships").
		Where(goqu.Ex{"followerId": followerID, "followedId": followedID}).
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

// Followers lists who follows userID, newest first, with the total count.
func (r *UserRelationshipRepository) Followers(ctx context.Context, q interfaces.Querier, userID uuid.UUID, offset, limit int) ([]Connection, int, error) {
	return r.connections(ctx, q, "followedId", "followerId", userID, offset, limit)
}

// Following lists whom userID follows, newest first, with the total count.
func (r *UserRelationshipRepository) Following(ctx context.Context, q interfaces.Querier, userID uuid.UUID, offset, limit int) ([]Connection, int, error) {
	return r.connections(ctx, q, "followerId", "followedId", userID, offset, limit)
}

// Counts returns how many followers userID has and how many users it follows.
func (r *UserRelationshipRepository) Counts(ctx context.Context, q interfaces.Querier, userID uuid.UUID) (int, int, error) {
	query, args, err := dialect.From("userRelationships").Select(
		goqu.COUNT(goqu.Case().When(goqu.C("followedId").Eq(userID), 1)).As("followers"),
		goqu.COUNT(goqu.Case().When(goqu.C("followerId").Eq(userID), 1)).As("following"),
	).Where(goqu.Or(
		goqu.C("followedId").Eq(userID),
		goqu.C("followerId").Eq(userID),
	)).Prepared(true).ToSQL()
	if err != nil {
		return 0, 0, err
	}

	var followers, following int
	if err := q.QueryRow(ctx, query, args...).Scan(&followers, &following); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// connections pages through the relationships whose filterColumn is userID and
// joins the profile of the user in otherColumn.
func (r *UserRelationshipRepository) connections(ctx context.Context, q interfaces.Querier, filterColumn, otherColumn string, userID uuid.UUID, offset, limit int) ([]Connection, int, error) {
	countQuery, countArgs, err := dialect.From("userRelationships").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{filterColumn: userID}).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := dialect.From(goqu.T("userRelationships").As("r")).
		Select(goqu.I("p.userId"), goqu.I("p.displayName"), goqu.I("p.profilePicture"), goqu.I("r.createdAt")).
		Join(goqu.T("userProfiles").As("p"), goqu.On(goqu.I("p.userId").Eq(goqu.I("r."+otherColumn)))).
		Where(goqu.I("r." + filterColumn).Eq(userID)).
		Order(goqu.I("r.createdAt").Desc()).
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

	connections := []Connection{}
	for rows.Next() {
		var connection Connection
		if err := rows.Scan(&connection.UserID, &connection.DisplayName, &connection.ProfilePicture, &connection.Since); err != nil {
			return nil, 0, err
		}
		connections = append(connections, connection)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return connections, total, nil
}
