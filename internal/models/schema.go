package models

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"plan-pleno/internal/interfaces"
)

// Column is one column of a relational table, Definition being its SQL type and
// constraints.
type Column struct {
	Name       string
	Definition string
}

// UniqueIndex is a named unique index over one or more columns.
type UniqueIndex struct {
	Name    string
	Columns []string
}

// Table describes a relational table.
type Table struct {
	Name    string
	Columns []Column
	Uniques []UniqueIndex
}

// Association is a foreign key from Table.Column to RefTable.id. Deleting the
// referenced row deletes the referencing rows.
type Association struct {
	Table    string
	Column   string
	RefTable string
}

func (a Association) constraintName() string {
	return a.Table + "_" + a.Column + "_fkey"
}

// Schema collects the relational tables and their associations.
type Schema struct {
	tables       []Table
	associations []Association
}

func NewSchema() *Schema {
	return &Schema{}
}

// Register adds a table. Tables must be registered before they are referenced.
func (s *Schema) Register(table Table) {
	s.tables = append(s.tables, table)
}

// Associate declares a cascading foreign key between two registered tables.
func (s *Schema) Associate(table, column, refTable string) error {
	if !s.has(table) || !s.has(refTable) {
		return fmt.Errorf("associate %s.%s -> %s: table not registered", table, column, refTable)
	}
	s.associations = append(s.associations, Association{Table: table, Column: column, RefTable: refTable})
	return nil
}

func (s *Schema) Tables() []Table {
	return s.tables
}

func (s *Schema) Associations() []Association {
	return s.associations
}

func (s *Schema) has(name string) bool {
	for _, table := range s.tables {
		if table.Name == name {
			return true
		}
	}
	return false
}

// Statements returns the DDL that brings a database up to the schema without
// dropping data: tables and missing columns are added, unique indexes created and
// foreign keys recreated.
func (s *Schema) Statements() []string {
	var statements []string

	for _, table := range s.tables {
		definitions := make([]string, 0, len(table.Columns))
		for _, column := range table.Columns {
			definitions = append(definitions, quote(column.Name)+" "+column.Definition)
		}
		statements = append(statements, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
			quote(table.Name), strings.Join(definitions, ", ")))

		for _, column := range table.Columns[1:] {
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
				quote(table.Name), quote(column.Name), column.Definition))
		}

		for _, unique := range table.Uniques {
			columns := make([]string, 0, len(unique.Columns))
			for _, column := range unique.Columns {
				columns = append(columns, quote(column))
			}
			statements = append(statements, fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
				quote(unique.Name), quote(table.Name), strings.Join(columns, ", ")))
		}
	}

	for _, association := range s.associations {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s",
				quote(association.Table), quote(association.constraintName())),
			fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (\"id\") ON DELETE CASCADE ON UPDATE CASCADE",
				quote(association.Table), quote(association.constraintName()), quote(association.Column), quote(association.RefTable)),
		)
	}

	return statements
}

// Sync applies Statements in a single transaction.
func (s *Schema) Sync(ctx context.Context, pool interfaces.PgxPoolIface) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, statement := range s.Statements() {
		log.Debug("Schema sync: ", statement)
		if _, err := tx.Exec(ctx, statement); err != nil {
			return fmt.Errorf("schema sync %q: %w", statement, err)
		}
	}

	return tx.Commit(ctx)
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

const (
	uuidPK    = "UUID NOT NULL PRIMARY KEY"
	uuidFK    = "UUID NOT NULL"
	timestamp = "TIMESTAMP WITH TIME ZONE NOT NULL"
)

var usersTable = Table{
	Name: "users",
	Columns: []Column{
		{"id", uuidPK},
		{"email", "VARCHAR(255) NOT NULL"},
		{"passwordHash", "VARCHAR(255) NOT NULL"},
		{"googleId", "VARCHAR(255)"},
		{"isEmailVerified", "BOOLEAN NOT NULL DEFAULT false"},
		{"isBusinessAccount", "BOOLEAN NOT NULL DEFAULT false"},
		{"role", "VARCHAR(16) NOT NULL DEFAULT 'user' CHECK (\"role\" IN ('user', 'business', 'admin', 'superadmin'))"},
		{"passwordResetToken", "VARCHAR(255)"},
		{"passwordResetExpires", "TIMESTAMP WITH TIME ZONE"},
		{"lastLogin", "TIMESTAMP WITH TIME ZONE"},
		{"loginAttempts", "INTEGER NOT NULL DEFAULT 0"},
		{"accountLockedUntil", "TIMESTAMP WITH TIME ZONE"},
		{"createdAt", timestamp},
		{"updatedAt", timestamp},
	},
	Uniques: []UniqueIndex{
		{Name: "users_email_key", Columns: []string{"email"}},
		{Name: "users_googleId_key", Columns: []string{"googleId"}},
	},
}

var userProfilesTable = Table{
	Name: "userProfiles",
	Columns: []Column{
		{"id", uuidPK},
		{"userId", uuidFK},
		{"displayName", "VARCHAR(255) NOT NULL"},
		{"bio", "TEXT"},
		{"ageRange", "VARCHAR(8) CHECK (\"ageRange\" IN ('18-24', '25-34', '35-44', '45-54', '55-64', '65+'))"},
		{"profilePicture", "VARCHAR(255)"},
		{"createdAt", timestamp},
		{"updatedAt", timestamp},
	},
	Uniques: []UniqueIndex{
		{Name: "userProfiles_userId_key", Columns: []string{"userId"}},
	},
}

var userRelationshipsTable = Table{
	Name: "userRelationships",
	Columns: []Column{
		{"id", uuidPK},
		{"followerId", uuidFK},
		{"followedId", uuidFK},
		{"createdAt", timestamp},
	},
	Uniques: []UniqueIndex{
		{Name: "unique_follower_followed", Columns: []string{"followerId", "followedId"}},
	},
}

var userSavedActivitiesTable = Table{
	Name: "userSavedActivities",
	Columns: []Column{
		{"id", uuidPK},
		{"userId", uuidFK},
		{"activityId", "VARCHAR(24) NOT NULL"},
		{"createdAt", timestamp},
	},
	Uniques: []UniqueIndex{
		{Name: "unique_user_activity", Columns: []string{"userId", "activityId"}},
	},
}

var userPreferencesTable = Table{
	Name: "userPreferences",
	Columns: []Column{
		{"id", uuidPK},
		{"userId", uuidFK},
		{"categoryId", "VARCHAR(24) NOT NULL"},
		{"weight", "DOUBLE PRECISION NOT NULL DEFAULT 1 CHECK (\"weight\" >= 0 AND \"weight\" <= 10)"},
		{"createdAt", timestamp},
		{"updatedAt", timestamp},
	},
	Uniques: []UniqueIndex{
		{Name: "unique_user_category", Columns: []string{"userId", "categoryId"}},
	},
}
