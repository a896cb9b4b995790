package utils

const (
	// UserIdKey is the key for the user ID used in routing parameters.
	UserIdKey = "userId"

	// ActivityIdKey is the key for the activity ID used in routing parameters.
	ActivityIdKey = "activityId"

	// CategoryIdKey is the key for the category ID used in routing parameters.
	CategoryIdKey = "categoryId"

	// CategoryNameKey is the key for the category name used in routing parameters.
	CategoryNameKey = "name"

	// CategoryIdParamKey is the key for the category filter used in query parameters.
	CategoryIdParamKey = "categoryId"

	// SubcategoryIdParamKey is the key for the subcategory filter used in query parameters.
	SubcategoryIdParamKey = "subcategoryId"

	// LongitudeParamKey and LatitudeParamKey locate a nearby search.
	LongitudeParamKey = "lng"
	LatitudeParamKey  = "lat"

	// MaxDistanceParamKey is the radius of a nearby search in meters.
	MaxDistanceParamKey = "maxDistance"

	// OffsetParamKey is the key for offset used in pagination query parameters.
	OffsetParamKey = "offset"

	// LimitParamKey is the key for limit used in pagination query parameters.
	LimitParamKey = "limit"
)
