package models

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"plan-pleno/internal/interfaces"
)

const (
	RoleUser       = "user"
	RoleBusiness   = "business"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"

	// MaxLoginAttempts failed logins in a row lock the account for LockDuration.
	MaxLoginAttempts = 5
	LockDuration     = 15 * time.Minute
)

var dialect = goqu.Dialect("postgres")

// User is an account of the relational store.
type User struct {
	ID                   uuid.UUID
	Email                string
	PasswordHash         string
	GoogleID             *string
	IsEmailVerified      bool
	IsBusinessAccount    bool
	Role                 string
	PasswordResetToken   *string
	PasswordResetExpires *time.Time
	LastLogin            *time.Time
	LoginAttempts        int
	AccountLockedUntil   *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsLocked reports whether logins are refused at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && now.Before(*u.AccountLockedUntil)
}

// RegisterSuccessfulLogin clears the failure counter and any lock.
func (u *User) RegisterSuccessfulLogin(now time.Time) {
	u.LoginAttempts = 0
	u.AccountLockedUntil = nil
	u.LastLogin = &now
}

var userColumns = []interface{}{
	"id", "email", "passwordHash", "googleId", "isEmailVerified", "isBusinessAccount", "role",
	"passwordResetToken", "passwordResetExpires", "lastLogin", "loginAttempts", "accountLockedUntil",
	"createdAt", "updatedAt",
}

func (u *User) scanTargets() []interface{} {
	return []interface{}{
		&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.IsEmailVerified, &u.IsBusinessAccount, &u.Role,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.LastLogin, &u.LoginAttempts, &u.AccountLockedUntil,
		&u.CreatedAt, &u.UpdatedAt,
	}
}

// UserRepository runs the user queries on whichever Querier it is handed, so
// callers decide whether a statement is part of a transaction.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Create inserts the user, assigning id, role and timestamps when unset.
func (r *UserRepository) Create(ctx context.Context, q interfaces.Querier, user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	query, args, err := dialect.Insert("users").Rows(goqu.Record{
		"id":                user.ID,
		"email":             user.Email,
		"passwordHash":      user.PasswordHash,
		"googleId":          user.GoogleID,
		"isEmailVerified":   user.IsEmailVerified,
		"isBusinessAccount": user.IsBusinessAccount,
		"role":              user.Role,
		"loginAttempts":     user.LoginAttempts,
		"createdAt":         user.CreatedAt,
		"updatedAt":         user.UpdatedAt,
	}).Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return translatePgError(err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, q interfaces.Querier, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, q, goqu.Ex{"id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, q interfaces.Querier, email string) (*User, error) {
	return r.findOne(ctx, q, goqu.Ex{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, q interfaces.Querier, where goqu.Ex) (*User, error) {
	query, args, err := dialect.From("users").Select(userColumns...).Where(where).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	user := &User{}
	if err := q.QueryRow(ctx, query, args...).Scan(user.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// RecordFailedLogin counts a failed login in a single statement, so concurrent
// failures cannot overwrite each other's count. Reaching MaxLoginAttempts locks the
// account until now+LockDuration and starts counting from zero again. The counter
// and lock of user are updated to the stored values.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, q interfaces.Querier, user *User, now time.Time) error {
	reachesLimit := goqu.L(`"loginAttempts" + 1 >= ?`, MaxLoginAttempts)
	now = now.UTC()

	query, args, err := dialect.Update("users").Set(goqu.Record{
		"loginAttempts":      goqu.Case().When(reachesLimit, 0).Else(goqu.L(`"loginAttempts" + 1`)),
		"accountLockedUntil": goqu.Case().When(reachesLimit, now.Add(LockDuration)).Else(goqu.I("accountLockedUntil")),
		"updatedAt":          now,
	}).Where(goqu.Ex{"id": user.ID}).
		Returning("loginAttempts", "accountLockedUntil").
		Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&user.LoginAttempts, &user.AccountLockedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	user.UpdatedAt = now
	return nil
}

// SaveLoginState persists the login bookkeeping fields of the user after a
// successful login.
func (r *UserRepository) SaveLoginState(ctx context.Context, q interfaces.Querier, user *User) error {
	user.UpdatedAt = time.Now().UTC()

	query, args, err := dialect.Update("users").Set(goqu.Record{
		"loginAttempts":      user.LoginAttempts,
		"accountLockedUntil": user.AccountLockedUntil,
		"lastLogin":          user.LastLogin,
		"updatedAt":          user.UpdatedAt,
	}).Where(goqu.Ex{"id": user.ID}).Prepared(true).ToSQL()
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, query, args...)
	return err
}

// Delete removes the user. Profile, relationships, saved activities and
// preferences go with it through the cascading foreign keys.
func (r *UserRepository) Delete(ctx context.Context, q interfaces.Querier, id uuid.UUID) error {
	query, args, err := dialect.Delete("users").Where(goqu.Ex{"id": id}).Prepared(true).ToSQL()
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
