package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityRef points from the relational store to an activity document. The
// relational store keeps it as hex text and does not check that it resolves.
type ActivityRef struct {
	id primitive.ObjectID
}

// CategoryRef points from the relational store to a category document.
type CategoryRef struct {
	id primitive.ObjectID
}

func NewActivityRef(id primitive.ObjectID) ActivityRef {
	return ActivityRef{id: id}
}

func NewCategoryRef(id primitive.ObjectID) CategoryRef {
	return CategoryRef{id: id}
}

// ParseActivityRef parses a 24 character hex id.
func ParseActivityRef(hex string) (ActivityRef, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return ActivityRef{}, fmt.Errorf("invalid activity id %q: %w", hex, err)
	}
	return ActivityRef{id: id}, nil
}

// ParseCategoryRef parses a 24 character hex id.
func ParseCategoryRef(hex string) (CategoryRef, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return CategoryRef{}, fmt.Errorf("invalid category id %q: %w", hex, err)
	}
	return CategoryRef{id: id}, nil
}

func (r ActivityRef) ObjectID() primitive.ObjectID { return r.id }
func (r ActivityRef) String() string { return r.id.Hex() }
func (r ActivityRef) IsZero() bool { return r.id.IsZero() }

func (r CategoryRef) ObjectID() primitive.ObjectID { return r.id }
func (r CategoryRef) String() string { return r.id.Hex() }
func (r CategoryRef) IsZero() bool { return r.id.IsZero() }

// Value and Scan store the reference as text.

func (r ActivityRef) Value() (driver.Value, error) { return r.id.Hex(), nil }
func (r CategoryRef) Value() (driver.Value, error) { return r.id.Hex(), nil }

func (r *ActivityRef) Scan(src interface{}) error {
	id, err := scanObjectID(src)
	if err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *CategoryRef) Scan(src interface{}) error {
	id, err := scanObjectID(src)
	if err != nil {
		return err
	}
	r.id = id
	return nil
}

func scanObjectID(src interface{}) (primitive.ObjectID, error) {
	switch v := src.(type) {
	case string:
		return primitive.ObjectIDFromHex(v)
	case []byte:
		return primitive.ObjectIDFromHex(string(v))
	default:
		return primitive.NilObjectID, fmt.Errorf("cannot scan %T into a document reference", src)
	}
}

func (r ActivityRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.id.Hex()) }
func (r CategoryRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.id.Hex()) }

// MarshalBSONValue keeps the reference a native ObjectID inside the document store.
func (r ActivityRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.id)
}

func (r CategoryRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(r.id)
}
