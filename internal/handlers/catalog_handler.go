package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/managers"
	"plan-pleno/internal/models"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

type CatalogHdl interface {
	GetCategory(c *gin.Context)
	GetSubcategories(c *gin.Context)
	GetActivities(c *gin.Context)
	GetNearbyActivities(c *gin.Context)
}

type CatalogHandler struct {
	DocumentManager managers.DocumentMgr
}

func NewCatalogHandler(documentManager *managers.DocumentMgr) CatalogHdl {
	return &CatalogHandler{
		DocumentManager: *documentManager,
	}
}

// GetCategory looks a category up by name, ignoring case.
func (handler *CatalogHandler) GetCategory(c *gin.Context) {
	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}

	category, err := models.NewCategoryStore(database).FindByName(c, c.Param(utils.CategoryNameKey))
	if err != nil {
		handleCategoryError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, category, http.StatusOK)
}

// GetSubcategories lists the subcategories of the named category.
func (handler *CatalogHandler) GetSubcategories(c *gin.Context) {
	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}

	category, err := models.NewCategoryStore(database).FindByName(c, c.Param(utils.CategoryNameKey))
	if err != nil {
		handleCategoryError(c, err)
		return
	}

	subcategories, err := models.NewSubcategoryStore(database).FindByCategoryID(c, category.ID)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.RecordsDTO{Records: subcategories}, http.StatusOK)
}

// GetActivities lists the activities of a category or a subcategory. Exactly one
// of the two filters is expected; categoryId wins if both are given.
func (handler *CatalogHandler) GetActivities(c *gin.Context) {
	categoryParam := c.Query(utils.CategoryIdParamKey)
	subcategoryParam := c.Query(utils.SubcategoryIdParamKey)
	if categoryParam == "" && subcategoryParam == "" {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("missing categoryId or subcategoryId"))
		return
	}

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}
	store := models.NewActivityStore(database)

	var activities []models.Activity
	var err error
	if categoryParam != "" {
		categoryId, ok := parseObjectId(c, categoryParam)
		if !ok {
			return
		}
		activities, err = store.FindByCategory(c, categoryId)
	} else {
		subcategoryId, ok := parseObjectId(c, subcategoryParam)
		if !ok {
			return
		}
		activities, err = store.FindBySubcategory(c, subcategoryId)
	}
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.RecordsDTO{Records: activities}, http.StatusOK)
}

// GetNearbyActivities lists activities around lng/lat, within maxDistance meters.
func (handler *CatalogHandler) GetNearbyActivities(c *gin.Context) {
	lng, errLng := strconv.ParseFloat(c.Query(utils.LongitudeParamKey), 64)
	lat, errLat := strconv.ParseFloat(c.Query(utils.LatitudeParamKey), 64)
	if err := errors.Join(errLng, errLat); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}
	if math.IsNaN(lng) || math.IsNaN(lat) || math.Abs(lng) > 180 || math.Abs(lat) > 90 {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("coordinates out of range"))
		return
	}

	maxDistance := float64(models.DefaultNearbyDistance)
	if value := c.Query(utils.MaxDistanceParamKey); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, errors.New("invalid maxDistance "+value))
			return
		}
		maxDistance = parsed
	}

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}

	activities, err := models.NewActivityStore(database).FindNearby(c, [2]float64{lng, lat}, maxDistance)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.RecordsDTO{Records: activities}, http.StatusOK)
}

func handleCategoryError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		utils.WriteAndLogError(c, schemas.CategoryNotFound, http.StatusNotFound, err)
		return
	}
	writeDatabaseError(c, err)
}
