package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"plan-pleno/internal/interfaces"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/middleware"
	"plan-pleno/internal/models"
	"plan-pleno/internal/saga"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

type UserHdl interface {
	RegisterUser(c *gin.Context)
	LoginUser(c *gin.Context)
	GetMe(c *gin.Context)
	DeleteMe(c *gin.Context)
}

type UserHandler struct {
	DatabaseManager managers.DatabaseMgr
	DocumentManager managers.DocumentMgr
	JWTManager      managers.JWTMgr
	MailManager     managers.MailMgr
	VerifyMX        bool
	Users           *models.UserRepository
	Profiles        *models.UserProfileRepository
	Relationships   *models.UserRelationshipRepository
	now             func() time.Time
}

func NewUserHandler(databaseManager *managers.DatabaseMgr, documentManager *managers.DocumentMgr, jwtManager *managers.JWTMgr, mailManager *managers.MailMgr, verifyMX bool) UserHdl {
	return &UserHandler{
		DatabaseManager: *databaseManager,
		DocumentManager: *documentManager,
		JWTManager:      *jwtManager,
		MailManager:     *mailManager,
		VerifyMX:        verifyMX,
		Users:           models.NewUserRepository(),
		Profiles:        models.NewUserProfileRepository(),
		Relationships:   models.NewUserRelationshipRepository(),
		now:             time.Now,
	}
}

// RegisterUser creates the user and its profile in one transaction and sends the
// welcome mail once both are committed.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	request := middleware.Payload[schemas.RegistrationRequest](c)
	email := strings.ToLower(strings.TrimSpace(request.Email))

	if handler.VerifyMX && !utils.GetValidator().VerifyEmail(email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusUnprocessableEntity, errors.New("email "+email+" is unreachable"))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	tx := utils.BeginTransaction(c, pool)
	if tx == nil {
		return
	}
	defer utils.RollbackTransaction(c, tx)

	user := &models.User{
		Email:        email,
		PasswordHash: string(passwordHash),
	}
	if err := handler.Users.Create(c, tx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			utils.WriteAndLogError(c, schemas.EmailTaken, http.StatusConflict, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	profile := &models.UserProfile{
		UserID:      user.ID,
		DisplayName: request.DisplayName,
	}
	if request.AgeRange != "" {
		profile.AgeRange = &request.AgeRange
	}
	if err := handler.Profiles.Create(c, tx, profile); err != nil {
		writeDatabaseError(c, err)
		return
	}

	if err := utils.CommitTransaction(c, tx); err != nil {
		return
	}

	if err := handler.MailManager.SendWelcomeMail(user.Email, profile.DisplayName); err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Welcome mail could not be sent", err)
	}

	utils.WriteAndLogResponse(c, newUserDTO(user, profile, 0, 0), http.StatusCreated)
}

// LoginUser checks the credentials and returns a token. Failed attempts are
// counted and lock the account once models.MaxLoginAttempts is reached.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	request := middleware.Payload[schemas.LoginRequest](c)
	email := strings.ToLower(strings.TrimSpace(request.Email))

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	user, err := handler.Users.FindByEmail(c, pool, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	now := handler.now()
	if user.IsLocked(now) {
		utils.WriteAndLogError(c, schemas.AccountLocked, http.StatusLocked, errors.New("account "+user.ID.String()+" is locked"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		if recordErr := handler.Users.RecordFailedLogin(c, pool, user, now); recordErr != nil {
			if errors.Is(recordErr, models.ErrNotFound) {
				utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, recordErr)
				return
			}
			writeDatabaseError(c, recordErr)
			return
		}
		if user.IsLocked(now) {
			utils.WriteAndLogError(c, schemas.AccountLocked, http.StatusLocked, err)
			return
		}
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	user.RegisterSuccessfulLogin(now)
	if err := handler.Users.SaveLoginState(c, pool, user); err != nil {
		writeDatabaseError(c, err)
		return
	}

	token, err := handler.JWTManager.GenerateJWT(user.ID.String(), user.Role)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenDTO{Token: token}, http.StatusOK)
}

// GetMe returns the authenticated user with profile and follow counts.
func (handler *UserHandler) GetMe(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}

	user, profile, ok := handler.loadUser(c, pool, userId)
	if !ok {
		return
	}

	followers, following, err := handler.Relationships.Counts(c, pool, userId)
	if err != nil {
		writeDatabaseError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, newUserDTO(user, profile, followers, following), http.StatusOK)
}

// DeleteMe removes the reviews of the user from the document store and then the
// user from the relational store. If the second step fails the reviews are put back.
func (handler *UserHandler) DeleteMe(c *gin.Context) {
	userId, ok := retrieveUserId(c)
	if !ok {
		return
	}

	pool, ok := retrievePool(c, handler.DatabaseManager)
	if !ok {
		return
	}
	database, ok := retrieveDatabase(c, handler.DocumentManager)
	if !ok {
		return
	}
	reviews := models.NewReviewStore(database)

	var snapshot []models.Review
	deletion := saga.New("delete-account").
		AddStep(saga.Step{
			Name: "delete-reviews",
			Action: func(ctx context.Context) error {
				var err error
				snapshot, err = reviews.FindByUserID(ctx, userId.String())
				if err != nil {
					return err
				}
				// Only the snapshotted reviews are removed, so Restore can undo exactly this step
				ids := make([]primitive.ObjectID, 0, len(snapshot))
				for _, review := range snapshot {
					ids = append(ids, review.ID)
				}
				_, err = reviews.DeleteByIDs(ctx, ids)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return reviews.Restore(ctx, snapshot)
			},
		}).
		AddStep(saga.Step{
			Name: "delete-user",
			Action: func(ctx context.Context) error {
				return handler.Users.Delete(ctx, pool, userId)
			},
		})

	if err := deletion.Execute(c); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		writeDatabaseError(c, err)
		return
	}

	utils.LogMessageWithFields(c, "info", "Deleted account "+userId.String())
	c.Status(http.StatusNoContent)
}

// loadUser writes the error response itself and returns false when the user or
// its profile cannot be loaded.
func (handler *UserHandler) loadUser(c *gin.Context, q interfaces.Querier, userId uuid.UUID) (*models.User, *models.UserProfile, bool) {
	user, err := handler.Users.FindByID(c, q, userId)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return nil, nil, false
		}
		writeDatabaseError(c, err)
		return nil, nil, false
	}

	profile, err := handler.Profiles.FindByUserID(c, q, userId)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		writeDatabaseError(c, err)
		return nil, nil, false
	}
	return user, profile, true
}

func newUserDTO(user *models.User, profile *models.UserProfile, followers, following int) *schemas.UserDTO {
	dto := &schemas.UserDTO{
		UserId:            user.ID.String(),
		Email:             user.Email,
		Role:              user.Role,
		IsEmailVerified:   user.IsEmailVerified,
		IsBusinessAccount: user.IsBusinessAccount,
		FollowerCount:     followers,
		FollowingCount:    following,
		CreatedAt:         user.CreatedAt.Format(time.RFC3339),
	}
	if profile != nil {
		dto.Profile = schemas.ProfileDTO{
			DisplayName:    profile.DisplayName,
			Bio:            profile.Bio,
			AgeRange:       profile.AgeRange,
			ProfilePicture: profile.ProfilePicture,
		}
	}
	return dto
}
