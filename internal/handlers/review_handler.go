package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plan-pleno/internal/managers"
	"plan-pleno/internal/middleware"
	"plan-pleno/internal/models"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

type ReviewHdl interface {
	GetReviews(c *gin.Context)
	GetReviewStats(c *gin.Context)
	CreateReview(c *gin.Context)
}

type ReviewHandler struct {
	DatabaseManager managers.DatabaseMgr
	DocumentManager managers.DocumentMgr
	Users           *models.UserRepository
}

func NewReviewHandler(databaseManager *managers.DatabaseMgr, documentManager *managers.DocumentMgr) ReviewHdl {
	return &ReviewHandler{
		DatabaseManager: *databaseManager,
		DocumentManager: *documentManager,
		Users:           models.NewUserRepository(),
	}
}

func (handler *ReviewHandler) GetReviews(c *gin.Context) {
	activityId, ok := parseObjectId(c, c.Param(utils.ActivityIdKey))
	if !ok {
		return
	}

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}

	reviews, err := models.NewReviewStore(database).FindByActivityID(c, activityId)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.RecordsDTO{Records: reviews}, http.StatusOK)
}

func (handler *ReviewHandler) GetReviewStats(c *gin.Context) {
	activityId, ok := parseObjectId(c, c.Param(utils.ActivityIdKey))
	if !ok {
		return
	}

	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}

	stats, err := models.NewReviewStore(database).GetReviewStats(c, activityId)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.ReviewStatsDTO{
		ThumbsUp:   stats.ThumbsUp,
		ThumbsDown: stats.ThumbsDown,
	}, http.StatusOK)
}

// CreateReview stores a review of an existing activity written by the caller.
// Reviews live in the document store without a foreign key, so the caller's
// account is looked up first. A token outliving its account must not leave
// reviews behind that no user owns.
func (handler *ReviewHandler) CreateReview(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	activityId, ok := parseObjectId(c, c.Param(utils.ActivityIdKey))
	if !ok {
		return
	}
	request := middleware.Payload[schemas.ReviewRequest](c)

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}
	if _, err := handler.Users.FindByID(c, pool, userId); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
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

	review := &models.Review{
		ActivityID: activityId,
		UserID:     userId.String(),
		Rating:     *request.Rating,
		Comment:    request.Comment,
	}
	if err := models.NewReviewStore(database).Create(c, review); err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, review, http.StatusCreated)
}
