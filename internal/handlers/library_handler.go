package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/managers"
	"plan-pleno/internal/middleware"
	"plan-pleno/internal/models"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

// LibraryHdl serves what a user keeps for later: saved activities and
// category preferences.
type LibraryHdl interface {
	GetSavedActivities(c *gin.Context)
	SaveActivity(c *gin.Context)
	RemoveSavedActivity(c *gin.Context)
	GetPreferences(c *gin.Context)
	SetPreference(c *gin.Context)
}

type LibraryHandler struct {
	DatabaseManager managers.DatabaseMgr
	DocumentManager managers.DocumentMgr
	SavedActivities *models.UserSavedActivityRepository
	Preferences     *models.UserPreferenceRepository
}

func NewLibraryHandler(databaseManager *managers.DatabaseMgr, documentManager *managers.DocumentMgr) LibraryHdl {
	return &LibraryHandler{
		DatabaseManager: *databaseManager,
		DocumentManager: *documentManager,
		SavedActivities: models.NewUserSavedActivityRepository(),
		Preferences:     models.NewUserPreferenceRepository(),
	}
}

func (handler *LibraryHandler) GetSavedActivities(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	offset, limit := utils.ParsePaginationParams(c)

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	saved, total, err := handler.SavedActivities.List(c, pool, userId, offset, limit)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	records := make([]schemas.SavedActivityDTO, 0, len(saved))
	for _, entry := range saved {
		records = append(records, schemas.SavedActivityDTO{
			ActivityId: entry.ActivityID.String(),
			SavedAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}

	utils.SendPaginatedResponse(c, records, offset, limit, total)
}

// SaveActivity bookmarks an activity. The activity has to exist in the document
// store, the relational store keeps only its id.
func (handler *LibraryHandler) SaveActivity(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	activityId, ok := parseObjectId(c, c.Param(utils.ActivityIdKey))
	if !ok {
		return
	}

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}
	exists, err := models.NewActivityStore(database).Exists(c, activityId)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}
	if !exists {
		utils.WriteAndLogError(c, schemas.ActivityNotFound, http.StatusNotFound, errors.New("activity "+activityId.Hex()+" does not exist"))
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	saved, err := handler.SavedActivities.Save(c, pool, userId, models.NewActivityRef(activityId))
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			utils.WriteAndLogError(c, schemas.AlreadySaved, http.StatusConflict, err)
			return
		}
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.SavedActivityDTO{
		ActivityId: saved.ActivityID.String(),
		SavedAt:    saved.CreatedAt.Format(time.RFC3339),
	}, http.StatusCreated)
}

func (handler *LibraryHandler) RemoveSavedActivity(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	activityRef, err := models.ParseActivityRef(c.Param(utils.ActivityIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	if err := handler.SavedActivities.Remove(c, pool, userId, activityRef); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.SavedActivityNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (handler *LibraryHandler) GetPreferences(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	preferences, err := handler.Preferences.List(c, pool, userId)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	records := make([]schemas.PreferenceDTO, 0, len(preferences))
	for _, preference := range preferences {
		records = append(records, newPreferenceDTO(&preference))
	}

	utils.WriteAndLogResponse(c, &schemas.RecordsDTO{Records: records}, http.StatusOK)
}

// SetPreference sets the weight of an existing category for the caller.
func (handler *LibraryHandler) SetPreference(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	categoryId, ok := parseObjectId(c, c.Param(utils.CategoryIdKey))
	if !ok {
		return
	}
	request := middleware.Payload[schemas.PreferenceRequest](c)

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}
	if _, err := models.NewCategoryStore(database).FindByID(c, categoryId); err != nil {
		handleCategoryError(c, err)
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	preference, err := handler.Preferences.Upsert(c, pool, userId, models.NewCategoryRef(categoryId), *request.Weight)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, newPreferenceDTO(preference), http.StatusOK)
}

func newPreferenceDTO(preference *models.UserPreference) schemas.PreferenceDTO {
	return schemas.PreferenceDTO{
		CategoryId: preference.CategoryID.String(),
		Weight:     preference.Weight,
		UpdatedAt:  preference.UpdatedAt.Format(time.RFC3339),
	}
}
