// Package handlers implements the HTTP endpoints. Handlers fetch the store handles
// from the managers on every request, so a store that goes away is reported per
// request instead of at start up.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"plan-pleno/internal/interfaces"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

// retrievePool writes a 500 and returns false when the relational store is unavailable.
func retrievePool(c *gin.Context, databaseMgr managers.DatabaseMgr) (interfaces.PgxPoolIface, bool) {
	pool, err := databaseMgr.GetPool()
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, false
	}
	return pool, true
}

// retrieveDatabase writes a 500 and returns false when the document store is unavailable.
func retrieveDatabase(c *gin.Context, documentMgr managers.DocumentMgr) (*mongo.Database, bool) {
	database, err := documentMgr.GetDatabase()
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return nil, false
	}
	return database, true
}

// retrieveUserId returns the id of the authenticated user.
func retrieveUserId(c *gin.Context) (uuid.UUID, bool) {
	subject, err := managers.SubjectFromContext(c)
	if err != nil {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return uuid.Nil, false
	}

	userId, err := uuid.Parse(subject)
	if err != nil {
		utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
		return uuid.Nil, false
	}
	return userId, true
}

// parseUserIdParam reads a user id from the path. Malformed ids are reported as
// unknown users.
func parseUserIdParam(c *gin.Context) (uuid.UUID, bool) {
	userId, err := uuid.Parse(c.Param(utils.UserIdKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
		return uuid.Nil, false
	}
	return userId, true
}

// parseObjectId reads a document id from the path or query. Malformed ids are a bad request.
func parseObjectId(c *gin.Context, value string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, http.StatusBadRequest, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeDatabaseError(c *gin.Context, err error) {
	utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
}
