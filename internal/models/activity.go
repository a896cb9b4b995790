package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"plan-pleno/internal/utils"
)

const (
	activitiesCollection = "activities"

	// DefaultNearbyDistance is the search radius in meters when none is given.
	DefaultNearbyDistance = 10000

	ScheduleOneTime   = "one-time"
	ScheduleRecurring = "recurring"
)

// Location is where an activity takes place. Coordinates are [longitude, latitude].
type Location struct {
	Address     string    `bson:"address" json:"address" validate:"required"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"required,len=2"`
	MapURL      string    `bson:"mapUrl,omitempty" json:"mapUrl,omitempty"`
}

type RecurringSchedule struct {
	DaysOfWeek []int  `bson:"daysOfWeek" json:"daysOfWeek" validate:"required,dive,min=0,max=6"`
	StartTime  string `bson:"startTime,omitempty" json:"startTime,omitempty" validate:"omitempty,time_of_day"`
	EndTime    string `bson:"endTime,omitempty" json:"endTime,omitempty" validate:"omitempty,time_of_day"`
}

type Schedule struct {
	Type              string             `bson:"type" json:"type" validate:"required,oneof=one-time recurring"`
	Dates             []time.Time        `bson:"dates,omitempty" json:"dates,omitempty"`
	RecurringSchedule *RecurringSchedule `bson:"recurringSchedule,omitempty" json:"recurringSchedule,omitempty"`
}

type Price struct {
	Amount   float64 `bson:"amount" json:"amount" validate:"gte=0"`
	Currency string  `bson:"currency" json:"currency" validate:"oneof=USD EUR GBP"`
}

type AgeRestriction struct {
	MinAge *int `bson:"minAge,omitempty" json:"minAge,omitempty" validate:"omitempty,gte=0"`
	MaxAge *int `bson:"maxAge,omitempty" json:"maxAge,omitempty" validate:"omitempty,gte=0"`
}

// Activity is something a user can do at a place.
type Activity struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name" validate:"required"`
	Description    string               `bson:"description" json:"description" validate:"required"`
	Images         []string             `bson:"images" json:"images"`
	Location       Location             `bson:"location" json:"location"`
	CategoryID     primitive.ObjectID   `bson:"categoryId" json:"categoryId"`
	SubcategoryIDs []primitive.ObjectID `bson:"subcategoryIds" json:"subcategoryIds"`
	Schedule       *Schedule            `bson:"schedule,omitempty" json:"schedule,omitempty"`
	Price          *Price               `bson:"price,omitempty" json:"price,omitempty"`
	Duration       *int                 `bson:"duration,omitempty" json:"duration,omitempty" validate:"omitempty,min=1"`
	AgeRestriction *AgeRestriction      `bson:"ageRestriction,omitempty" json:"ageRestriction,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ActivityStore reads and writes the activities collection.
type ActivityStore struct {
	coll *mongo.Collection
}

func NewActivityStore(db *mongo.Database) *ActivityStore {
	return &ActivityStore{coll: db.Collection(activitiesCollection)}
}

// Indexes includes the 2dsphere index FindNearby depends on.
func (s *ActivityStore) Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.coordinates", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "subcategoryIds", Value: 1}}},
	}
}

// normalize trims text fields and fills the defaults of optional parts.
func (a *Activity) normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Description = strings.TrimSpace(a.Description)
	a.Location.Address = strings.TrimSpace(a.Location.Address)
	if a.Images == nil {
		a.Images = []string{}
	}
	if a.SubcategoryIDs == nil {
		a.SubcategoryIDs = []primitive.ObjectID{}
	}
	if a.Price != nil && a.Price.Currency == "" {
		a.Price.Currency = "USD"
	}
}

func (a *Activity) validate() error {
	if err := utils.GetValidator().Validate.Struct(a); err != nil {
		return &ValidationError{Entity: "activity", Err: err}
	}
	if a.CategoryID.IsZero() {
		return &ValidationError{Entity: "activity", Err: errors.New("categoryId is required")}
	}
	return nil
}

func (s *ActivityStore) Create(ctx context.Context, activity *Activity) error {
	activity.normalize()
	if err := activity.validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	activity.CreatedAt, activity.UpdatedAt = now, now

	res, err := s.coll.InsertOne(ctx, activity)
	if err != nil {
		return translateMongoError(err)
	}
	activity.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *ActivityStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Activity, error) {
	var activity Activity
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&activity); err != nil {
		return nil, translateMongoError(err)
	}
	return &activity, nil
}

// Exists reports whether an activity with the id is stored.
func (s *ActivityStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ActivityStore) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]Activity, error) {
	return findAll[Activity](ctx, s.coll, bson.M{"categoryId": categoryID})
}

func (s *ActivityStore) FindBySubcategory(ctx context.Context, subcategoryID primitive.ObjectID) ([]Activity, error) {
	return findAll[Activity](ctx, s.coll, bson.M{"subcategoryIds": subcategoryID})
}

// FindNearby lists activities within maxDistance meters of [lng, lat], nearest first.
// A maxDistance of zero or less falls back to DefaultNearbyDistance.
func (s *ActivityStore) FindNearby(ctx context.Context, coordinates [2]float64, maxDistance float64) ([]Activity, error) {
	return findAll[Activity](ctx, s.coll, nearbyFilter(coordinates, maxDistance))
}

func nearbyFilter(coordinates [2]float64, maxDistance float64) bson.M {
	if maxDistance <= 0 {
		maxDistance = DefaultNearbyDistance
	}
	return bson.M{
		"location.coordinates": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{coordinates[0], coordinates[1]},
				},
				"$maxDistance": maxDistance,
			},
		},
	}
}
