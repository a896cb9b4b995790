package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"plan-pleno/internal/interfaces"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/models"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

type SocialHdl interface {
	Follow(c *gin.Context)
	Unfollow(c *gin.Context)
	GetFollowers(c *gin.Context)
	GetFollowing(c *gin.Context)
}

type SocialHandler struct {
	DatabaseManager managers.DatabaseMgr
	Users           *models.UserRepository
	Relationships   *models.UserRelationshipRepository
}

func NewSocialHandler(databaseManager *managers.DatabaseMgr) SocialHdl {
	return &SocialHandler{
		DatabaseManager: *databaseManager,
		Users:           models.NewUserRepository(),
		Relationships:   models.NewUserRelationshipRepository(),
	}
}

// Follow makes the caller follow the user in the path.
func (handler *SocialHandler) Follow(c *gin.Context) {
	followerId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	followedId, ok := parseUserIdParam(c)
	if !ok {
		return
	}
	if followerId == followedId {
		utils.WriteAndLogError(c, schemas.SelfFollow, http.StatusBadRequest, errors.New("user tried to follow itself"))
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}
	if !handler.userExists(c, pool, followedId) {
		return
	}

	relationship, err := handler.Relationships.Follow(c, pool, followerId, followedId)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			utils.WriteAndLogError(c, schemas.AlreadyFollowing, http.StatusConflict, err)
			return
		}
		// Either account was deleted after the lookup above
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.FollowDTO{
		FollowId:   relationship.ID.String(),
		FollowerId: relationship.FollowerID.String(),
		FollowedId: relationship.FollowedID.String(),
		CreatedAt:  relationship.CreatedAt.Format(time.RFC3339),
	}, http.StatusCreated)
}

func (handler *SocialHandler) Unfollow(c *gin.Context) {
	followerId, ok := retrieveUserId(c)
	if !ok {
		return
	}
	followedId, ok := parseUserIdParam(c)
	if !ok {
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	if err := handler.Relationships.Unfollow(c, pool, followerId, followedId); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.NotFollowing, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (handler *SocialHandler) GetFollowers(c *gin.Context) {
	handler.listConnections(c, handler.Relationships.Followers)
}

func (handler *SocialHandler) GetFollowing(c *gin.Context) {
	handler.listConnections(c, handler.Relationships.Following)
}

type connectionLister func(ctx context.Context, q interfaces.Querier, userID uuid.UUID, offset, limit int) ([]models.Connection, int, error)

func (handler *SocialHandler) listConnections(c *gin.Context, list connectionLister) {
	if _, ok := retrieveUserId(c); !ok {
		return
	}
	userId, ok := parseUserIdParam(c)
	if !ok {
		return
	}
	offset, limit := utils.ParsePaginationParams(c)

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}
	if !handler.userExists(c, pool, userId) {
		return
	}

	connections, total, err := list(c, pool, userId, offset, limit)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	records := make([]schemas.RelationshipDTO, 0, len(connections))
	for _, connection := range connections {
		records = append(records, schemas.RelationshipDTO{
			UserId:         connection.UserID.String(),
			DisplayName:    connection.DisplayName,
			ProfilePicture: connection.ProfilePicture,
			Since:          connection.Since.Format(time.RFC3339),
		})
	}

	utils.SendPaginatedResponse(c, records, offset, limit, total)
}

func (handler *SocialHandler) userExists(c *gin.Context, q interfaces.Querier, userId uuid.UUID) bool {
	if _, err := handler.Users.FindByID(c, q, userId); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return false
		}
		writeDatabaseError(c, err)
		return false
	}
	return true
}
