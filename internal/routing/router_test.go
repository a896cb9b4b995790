package routing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"golang.org/x/crypto/bcrypt"

	"plan-pleno/internal/config"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/managers/mocks"
	"plan-pleno/internal/models"
)

type testEnv struct {
	server      *httptest.Server
	poolMock    pgxmock.PgxPoolIface
	databaseMgr *mocks.MockDatabaseManager
	documentMgr *mocks.MockDocumentManager
	mailMgr     *mocks.MockMailManager
	jwtMgr      managers.JWTMgr
}

// setupRouter starts a test server backed by a pgxmock pool and, when db is not
// nil, by a mocked mongo database.
func setupRouter(t *testing.T, db *mongo.Database, configure ...func(cfg *config.Config)) *testEnv {
	poolMock, err := pgxmock.NewPool()
	require.NoError(t, err)

	databaseMgrMock := &mocks.MockDatabaseManager{}
	databaseMgrMock.On("GetPool").Return(poolMock, nil)

	documentMgrMock := &mocks.MockDocumentManager{}
	if db != nil {
		documentMgrMock.On("GetDatabase").Return(db, nil)
	} else {
		documentMgrMock.On("GetDatabase").Return(nil, managers.ErrNotConnected)
	}

	mailMgrMock := &mocks.MockMailManager{}
	mailMgrMock.On("SendWelcomeMail", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	cfg := config.Load()
	cfg.Server.NodeEnv = "development"
	cfg.Server.APIPrefix = "/api"
	cfg.RateLimit.Max = 1000
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Expiration: "1h"}
	for _, fn := range configure {
		fn(cfg)
	}

	jwtMgr, err := managers.NewJWTManager(cfg.JWT)
	require.NoError(t, err)

	server := httptest.NewServer(InitRouter(cfg, databaseMgrMock, documentMgrMock, mailMgrMock, jwtMgr))
	t.Cleanup(server.Close)

	return &testEnv{
		server:      server,
		poolMock:    poolMock,
		databaseMgr: databaseMgrMock,
		documentMgr: documentMgrMock,
		mailMgr:     mailMgrMock,
		jwtMgr:      jwtMgr,
	}
}

func (env *testEnv) token(t *testing.T, userId uuid.UUID) string {
	token, err := env.jwtMgr.GenerateJWT(userId.String(), models.RoleUser)
	require.NoError(t, err)
	return "Bearer " + token
}

func (env *testEnv) assertExpectations(t *testing.T) {
	if err := env.poolMock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

var userColumns = []string{
	"id", "email", "passwordHash", "googleId", "isEmailVerified", "isBusinessAccount", "role",
	"passwordResetToken", "passwordResetExpires", "lastLogin", "loginAttempts", "accountLockedUntil",
	"createdAt", "updatedAt",
}

func userRow(id uuid.UUID, email, passwordHash string, loginAttempts int, lockedUntil *time.Time) *pgxmock.Rows {
	now := time.Now().UTC()
	var locked interface{}
	if lockedUntil != nil {
		locked = lockedUntil
	}
	return pgxmock.NewRows(userColumns).AddRow(
		id, email, passwordHash, nil, false, false, models.RoleUser,
		nil, nil, nil, loginAttempts, locked, now, now,
	)
}

func TestHealth(t *testing.T) {
	testCases := []struct {
		name     string
		mongoErr error
		pgErr    error
		mongodb  string
		postgres string
	}{
		{"BothConnected", nil, nil, "connected", "connected"},
		{"MongoNeverConnected", managers.ErrNotConnected, nil, "not_initialized", "connected"},
		{"PostgresLost", nil, errors.New("connection refused"), "connected", "disconnected"},
		{"MongoHeartbeatFailed", managers.ErrConnectionLost, managers.ErrNotConnected, "disconnected", "not_initialized"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupRouter(t, nil)
			env.documentMgr.On("Ping", mock.Anything).Return(tc.mongoErr)
			env.databaseMgr.On("Ping", mock.Anything).Return(tc.pgErr)

			expect := httpexpect.Default(t, env.server.URL)
			body := expect.GET("/health").Expect().Status(http.StatusOK).JSON().Object()
			body.Value("status").String().IsEqual("ok")
			body.Value("environment").String().IsEqual("development")
			body.Value("timestamp").String().NotEmpty()
			body.Value("databases").Object().IsEqual(map[string]interface{}{
				"mongodb":  tc.mongodb,
				"postgres": tc.postgres,
			})
		})
	}
}

func TestApiStubAndNotFound(t *testing.T) {
	env := setupRouter(t, nil)
	expect := httpexpect.Default(t, env.server.URL)

	for _, path := range []string{"/api", "/api/", "/api/unknown/deeper"} {
		expect.GET(path).Expect().Status(http.StatusOK).
			JSON().IsEqual(map[string]interface{}{"message": "Plan Pleno API"})
	}
	expect.DELETE("/api/whatever").Expect().Status(http.StatusOK).
		JSON().Object().Value("message").String().IsEqual("Plan Pleno API")

	expect.GET("/apiary").Expect().Status(http.StatusNotFound).
		JSON().IsEqual(map[string]interface{}{"message": "Not Found", "path": "/apiary"})
	expect.GET("/nowhere").WithQuery("page", 2).Expect().Status(http.StatusNotFound).
		JSON().IsEqual(map[string]interface{}{"message": "Not Found", "path": "/nowhere?page=2"})
}

func TestUserRegistration(t *testing.T) {
	validRequest := map[string]interface{}{
		"email":       "Ana@Example.com",
		"password":    "test.Password123",
		"displayName": "Ana <b>Lima</b>",
		"ageRange":    "25-34",
	}

	testCases := []struct {
		name         string
		request      map[string]interface{}
		status       int
		mockDatabase func(poolMock pgxmock.PgxPoolIface)
		responseBody map[string]interface{}
	}{
		{
			name:    "ValidRegistration",
			request: validRequest,
			status:  http.StatusCreated,
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectBegin()
				poolMock.ExpectExec(`INSERT INTO "users"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
				poolMock.ExpectExec(`INSERT INTO "userProfiles"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
				poolMock.ExpectCommit()
			},
		},
		{
			name: "InvalidEmail",
			request: map[string]interface{}{
				"email":       "ana@example@.com",
				"password":    "test.Password123",
				"displayName": "Ana",
			},
			status:       http.StatusBadRequest,
			mockDatabase: func(pgxmock.PgxPoolIface) {},
			responseBody: map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "ERR-001",
					"message": "The request body is invalid. Please check the request body and try again.",
				},
			},
		},
		{
			name: "WeakPassword",
			request: map[string]interface{}{
				"email":       "ana@example.com",
				"password":    "password",
				"displayName": "Ana",
			},
			status:       http.StatusBadRequest,
			mockDatabase: func(pgxmock.PgxPoolIface) {},
		},
		{
			name:    "DuplicateEmail",
			request: validRequest,
			status:  http.StatusConflict,
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectBegin()
				poolMock.ExpectExec(`INSERT INTO "users"`).WillReturnError(&pgconn.PgError{Code: "23505"})
				poolMock.ExpectRollback()
			},
			responseBody: map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "ERR-002",
					"message": "The email is already registered. Please log in or use another email.",
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupRouter(t, nil)
			tc.mockDatabase(env.poolMock)

			expect := httpexpect.Default(t, env.server.URL)
			response := expect.POST("/api/users").WithJSON(tc.request).Expect().Status(tc.status)

			if tc.responseBody != nil {
				response.JSON().IsEqual(tc.responseBody)
			}
			if tc.status == http.StatusCreated {
				body := response.JSON().Object()
				body.Value("email").String().IsEqual("ana@example.com")
				body.Value("role").String().IsEqual("user")
				body.Value("profile").Object().Value("displayName").String().IsEqual("Ana Lima")
				body.Value("profile").Object().Value("ageRange").String().IsEqual("25-34")
				env.mailMgr.AssertCalled(t, "SendWelcomeMail", "ana@example.com", "Ana Lima")
			} else {
				env.mailMgr.AssertNotCalled(t, "SendWelcomeMail", mock.Anything, mock.Anything)
			}

			env.assertExpectations(t)
		})
	}
}

func TestUserLogin(t *testing.T) {
	const password = "test.Password123"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	userId := uuid.New()
	lockedUntil := time.Now().Add(10 * time.Minute)

	testCases := []struct {
		name         string
		password     string
		mockDatabase func(poolMock pgxmock.PgxPoolIface)
		status       int
		errorCode    string
	}{
		{
			name:     "ValidLogin",
			password: password,
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "ana@example.com", string(hash), 2, nil))
				poolMock.ExpectExec(`UPDATE "users"`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			status: http.StatusOK,
		},
		{
			name:     "UnknownEmail",
			password: password,
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(pgxmock.NewRows(userColumns))
			},
			status:    http.StatusUnauthorized,
			errorCode: "ERR-003",
		},
		{
			name:     "WrongPassword",
			password: "wrong.Password123",
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "ana@example.com", string(hash), 0, nil))
				poolMock.ExpectQuery(`UPDATE "users" SET .*"loginAttempts" \+ 1.* RETURNING`).
					WillReturnRows(pgxmock.NewRows([]string{"loginAttempts", "accountLockedUntil"}).AddRow(1, nil))
			},
			status:    http.StatusUnauthorized,
			errorCode: "ERR-003",
		},
		{
			// The row was read before concurrent failures were counted; the
			// lock comes from the stored counter, not from the stale read.
			name:     "FifthFailureLocks",
			password: "wrong.Password123",
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "ana@example.com", string(hash), 0, nil))
				poolMock.ExpectQuery(`UPDATE "users" SET .*"loginAttempts" \+ 1.* RETURNING`).
					WillReturnRows(pgxmock.NewRows([]string{"loginAttempts", "accountLockedUntil"}).AddRow(0, &lockedUntil))
			},
			status:    http.StatusLocked,
			errorCode: "ERR-005",
		},
		{
			name:     "LockedAccount",
			password: password,
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "ana@example.com", string(hash), 0, &lockedUntil))
			},
			status:    http.StatusLocked,
			errorCode: "ERR-005",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupRouter(t, nil)
			tc.mockDatabase(env.poolMock)

			expect := httpexpect.Default(t, env.server.URL)
			response := expect.POST("/api/users/login").
				WithJSON(map[string]string{"email": "ana@example.com", "password": tc.password}).
				Expect().Status(tc.status)

			if tc.errorCode != "" {
				response.JSON().Object().Value("error").Object().Value("code").String().IsEqual(tc.errorCode)
			} else {
				token := response.JSON().Object().Value("token").String().NotEmpty().Raw()
				claims, err := env.jwtMgr.ValidateJWT(token)
				require.NoError(t, err)
				subject, err := claims.GetSubject()
				require.NoError(t, err)
				assert.Equal(t, userId.String(), subject)
			}

			env.assertExpectations(t)
		})
	}
}

func TestGetMe(t *testing.T) {
	userId := uuid.New()
	env := setupRouter(t, nil)
	expect := httpexpect.Default(t, env.server.URL)

	expect.GET("/api/users/me").Expect().Status(http.StatusUnauthorized).
		JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-014")

	now := time.Now().UTC()
	env.poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "ana@example.com", "hash", 0, nil))
	env.poolMock.ExpectQuery(`FROM "userProfiles"`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "userId", "displayName", "bio", "ageRange", "profilePicture", "createdAt", "updatedAt"}).
			AddRow(uuid.New(), userId, "Ana", nil, nil, nil, now, now))
	env.poolMock.ExpectQuery(`FROM "userRelationships"`).
		WillReturnRows(pgxmock.NewRows([]string{"followers", "following"}).AddRow(4, 2))

	body := expect.GET("/api/users/me").WithHeader("Authorization", env.token(t, userId)).
		Expect().Status(http.StatusOK).JSON().Object()
	body.Value("userId").String().IsEqual(userId.String())
	body.Value("followerCount").Number().IsEqual(4)
	body.Value("followingCount").Number().IsEqual(2)
	body.Value("profile").Object().Value("displayName").String().IsEqual("Ana")

	env.assertExpectations(t)
}

func TestFollow(t *testing.T) {
	followerId := uuid.New()
	followedId := uuid.New()

	testCases := []struct {
		name         string
		target       string
		mockDatabase func(poolMock pgxmock.PgxPoolIface)
		status       int
		errorCode    string
	}{
		{
			name:   "Follow",
			target: followedId.String(),
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(followedId, "bo@example.com", "hash", 0, nil))
				poolMock.ExpectExec(`INSERT INTO "userRelationships"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			status: http.StatusCreated,
		},
		{
			name:   "AlreadyFollowing",
			target: followedId.String(),
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(followedId, "bo@example.com", "hash", 0, nil))
				poolMock.ExpectExec(`INSERT INTO "userRelationships"`).WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			status:    http.StatusConflict,
			errorCode: "ERR-008",
		},
		{
			name:   "FollowerDeleted",
			target: followedId.String(),
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(followedId, "bo@example.com", "hash", 0, nil))
				poolMock.ExpectExec(`INSERT INTO "userRelationships"`).
					WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "userRelationships_followerId_fkey"})
			},
			status:    http.StatusNotFound,
			errorCode: "ERR-004",
		},
		{
			name:   "UnknownUser",
			target: followedId.String(),
			mockDatabase: func(poolMock pgxmock.PgxPoolIface) {
				poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(pgxmock.NewRows(userColumns))
			},
			status:    http.StatusNotFound,
			errorCode: "ERR-004",
		},
		{
			name:         "MalformedUserId",
			target:       "not-a-uuid",
			mockDatabase: func(pgxmock.PgxPoolIface) {},
			status:       http.StatusNotFound,
			errorCode:    "ERR-004",
		},
		{
			name:         "Self",
			target:       followerId.String(),
			mockDatabase: func(pgxmock.PgxPoolIface) {},
			status:       http.StatusBadRequest,
			errorCode:    "ERR-010",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupRouter(t, nil)
			tc.mockDatabase(env.poolMock)

			expect := httpexpect.Default(t, env.server.URL)
			response := expect.POST("/api/users/{userId}/follow", tc.target).
				WithHeader("Authorization", env.token(t, followerId)).
				Expect().Status(tc.status)

			if tc.errorCode != "" {
				response.JSON().Object().Value("error").Object().Value("code").String().IsEqual(tc.errorCode)
			} else {
				body := response.JSON().Object()
				body.Value("followerId").String().IsEqual(followerId.String())
				body.Value("followedId").String().IsEqual(followedId.String())
			}

			env.assertExpectations(t)
		})
	}
}

func TestUnfollowWithoutRelationship(t *testing.T) {
	env := setupRouter(t, nil)
	env.poolMock.ExpectExec(`DELETE FROM "userRelationships"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	expect := httpexpect.Default(t, env.server.URL)
	expect.DELETE("/api/users/{userId}/follow", uuid.New()).
		WithHeader("Authorization", env.token(t, uuid.New())).
		Expect().Status(http.StatusNotFound).
		JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-009")

	env.assertExpectations(t)
}

func TestDeleteAccount(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	userId := uuid.New()

	review := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "activityId", Value: primitive.NewObjectID()},
		{Key: "userId", Value: userId.String()},
		{Key: "rating", Value: true},
		{Key: "comment", Value: "Lovely trail"},
	}

	mt.Run("DeletesReviewsThenUser", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch, review),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		env.poolMock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.DELETE("/api/users/me").WithHeader("Authorization", env.token(mt.T, userId)).
			Expect().Status(http.StatusNoContent)

		env.assertExpectations(mt.T)
	})

	mt.Run("RestoresReviewsWhenUserDeletionFails", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch, review),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		env.poolMock.ExpectExec(`DELETE FROM "users"`).WillReturnError(errors.New("connection reset"))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.DELETE("/api/users/me").WithHeader("Authorization", env.token(mt.T, userId)).
			Expect().Status(http.StatusInternalServerError).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-016")

		var commands []string
		for _, event := range mt.GetAllStartedEvents() {
			commands = append(commands, event.CommandName)
		}
		assert.Equal(mt.T, []string{"find", "delete", "insert"}, commands)

		env.assertExpectations(mt.T)
	})

	mt.Run("UnknownUser", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.reviews", mtest.FirstBatch))
		env.poolMock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.DELETE("/api/users/me").WithHeader("Authorization", env.token(mt.T, userId)).
			Expect().Status(http.StatusNotFound).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-004")

		// Without snapshotted reviews nothing is deleted from the collection
		require.Len(mt.T, mt.GetAllStartedEvents(), 1)
		assert.Equal(mt.T, "find", mt.GetStartedEvent().CommandName)
	})
}

func TestCatalog(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("CategoryByName", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.categories", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Hiking"},
			{Key: "description", Value: "Trails"},
		}))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/categories/hiking").Expect().Status(http.StatusOK).
			JSON().Object().Value("name").String().IsEqual("Hiking")
	})

	mt.Run("UnknownCategory", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.categories", mtest.FirstBatch))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/categories/sailing").Expect().Status(http.StatusNotFound).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-006")
	})

	mt.Run("ActivitiesNeedAFilter", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/activities").Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities").WithQuery("categoryId", "xyz").Expect().Status(http.StatusBadRequest)
	})

	mt.Run("NearbyValidatesCoordinates", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/activities/nearby").WithQuery("lng", -122.4).Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities/nearby").WithQuery("lng", 200).WithQuery("lat", 37.8).Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities/nearby").WithQuery("lng", -122.4).WithQuery("lat", 37.8).WithQuery("maxDistance", -1).
			Expect().Status(http.StatusBadRequest)
	})

	mt.Run("NearbyRejectsNaN", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/activities/nearby").WithQuery("lng", "NaN").WithQuery("lat", 0).Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities/nearby").WithQuery("lng", 0).WithQuery("lat", "NaN").Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities/nearby").WithQuery("lng", -122.4).WithQuery("lat", 37.8).WithQuery("maxDistance", "NaN").
			Expect().Status(http.StatusBadRequest)
		expect.GET("/api/activities/nearby").WithQuery("lng", -122.4).WithQuery("lat", 37.8).WithQuery("maxDistance", "+Inf").
			Expect().Status(http.StatusBadRequest)

		assert.Empty(mt.T, mt.GetAllStartedEvents())
	})

	mt.Run("Nearby", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Lands End Trail"},
		}))

		expect := httpexpect.Default(mt.T, env.server.URL)
		records := expect.GET("/api/activities/nearby").WithQuery("lng", -122.4).WithQuery("lat", 37.8).WithQuery("maxDistance", 5000).
			Expect().Status(http.StatusOK).JSON().Object().Value("records").Array()
		records.Length().IsEqual(1)
		records.Value(0).Object().Value("name").String().IsEqual("Lands End Trail")
	})

	mt.Run("DocumentStoreDown", func(mt *mtest.T) {
		env := setupRouter(mt.T, nil)

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.GET("/api/categories/hiking").Expect().Status(http.StatusInternalServerError).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-016")
	})
}

func TestSaveActivity(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	activityId := primitive.NewObjectID()

	mt.Run("Saved", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))
		env.poolMock.ExpectExec(`INSERT INTO "userSavedActivities"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.PUT("/api/users/me/saved-activities/{activityId}", activityId.Hex()).
			WithHeader("Authorization", env.token(mt.T, uuid.New())).
			Expect().Status(http.StatusCreated).
			JSON().Object().Value("activityId").String().IsEqual(activityId.Hex())

		env.assertExpectations(mt.T)
	})

	mt.Run("CallerDeleted", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))
		env.poolMock.ExpectExec(`INSERT INTO "userSavedActivities"`).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "userSavedActivities_userId_fkey"})

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.PUT("/api/users/me/saved-activities/{activityId}", activityId.Hex()).
			WithHeader("Authorization", env.token(mt.T, uuid.New())).
			Expect().Status(http.StatusNotFound).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-004")

		env.assertExpectations(mt.T)
	})

	mt.Run("UnknownActivity", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.PUT("/api/users/me/saved-activities/{activityId}", activityId.Hex()).
			WithHeader("Authorization", env.token(mt.T, uuid.New())).
			Expect().Status(http.StatusNotFound).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-007")

		env.assertExpectations(mt.T)
	})
}

func TestCreateReview(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	userId := uuid.New()
	activityId := primitive.NewObjectID()

	mt.Run("Created", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		env.poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow(userId, "al@example.com", "hash", 0, nil))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
			mtest.CreateSuccessResponse(),
		)

		expect := httpexpect.Default(mt.T, env.server.URL)
		body := expect.POST("/api/activities/{activityId}/reviews", activityId.Hex()).
			WithHeader("Authorization", env.token(mt.T, userId)).
			WithJSON(map[string]interface{}{"rating": true, "comment": "Lovely trail"}).
			Expect().Status(http.StatusCreated).
			JSON().Object()
		body.Value("userId").String().IsEqual(userId.String())
		body.Value("activityId").String().IsEqual(activityId.Hex())

		env.assertExpectations(mt.T)
	})

	mt.Run("DeletedCaller", func(mt *mtest.T) {
		env := setupRouter(mt.T, mt.Client.Database("test"))
		env.poolMock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(pgxmock.NewRows(userColumns))

		expect := httpexpect.Default(mt.T, env.server.URL)
		expect.POST("/api/activities/{activityId}/reviews", activityId.Hex()).
			WithHeader("Authorization", env.token(mt.T, userId)).
			WithJSON(map[string]interface{}{"rating": false, "comment": "Too crowded"}).
			Expect().Status(http.StatusNotFound).
			JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-004")

		assert.Empty(mt.T, mt.GetAllStartedEvents())
		env.assertExpectations(mt.T)
	})
}

func TestRateLimit(t *testing.T) {
	env := setupRouter(t, nil, func(cfg *config.Config) {
		cfg.RateLimit.Max = 2
	})
	expect := httpexpect.Default(t, env.server.URL)

	expect.GET("/api").Expect().Status(http.StatusOK).Header("RateLimit-Remaining").IsEqual("1")
	expect.GET("/api").Expect().Status(http.StatusOK).Header("RateLimit-Remaining").IsEqual("0")
	expect.GET("/api").Expect().Status(http.StatusTooManyRequests).
		JSON().Object().Value("error").Object().Value("code").String().IsEqual("ERR-013")
}

func TestHealthIsNotRateLimited(t *testing.T) {
	const limit = 3
	env := setupRouter(t, nil, func(cfg *config.Config) {
		cfg.RateLimit.Max = limit
	})
	env.documentMgr.On("Ping", mock.Anything).Return(nil)
	env.databaseMgr.On("Ping", mock.Anything).Return(nil)
	expect := httpexpect.Default(t, env.server.URL)

	for i := 0; i <= limit; i++ {
		response := expect.GET("/health").Expect().Status(http.StatusOK)
		response.Header("RateLimit-Remaining").IsEmpty()
	}

	// the API itself is still limited
	for i := 0; i < limit; i++ {
		expect.GET("/api").Expect().Status(http.StatusOK)
	}
	expect.GET("/api").Expect().Status(http.StatusTooManyRequests)
}

func TestRootPrefixServesStubEverywhere(t *testing.T) {
	env := setupRouter(t, nil, func(cfg *config.Config) {
		cfg.Server.APIPrefix = "/"
	})
	expect := httpexpect.Default(t, env.server.URL)

	for _, path := range []string{"/", "/anything", "/deeper/path"} {
		expect.GET(path).Expect().Status(http.StatusOK).
			JSON().IsEqual(map[string]interface{}{"message": "Plan Pleno API"})
	}
}
