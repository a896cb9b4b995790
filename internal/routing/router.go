// Package routing wires the middleware chain and the routes of the HTTP API.
package routing

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"plan-pleno/internal/config"
	"plan-pleno/internal/handlers"
	"plan-pleno/internal/managers"
	"plan-pleno/internal/middleware"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

const apiName = "Plan Pleno API"

func InitRouter(cfg *config.Config, databaseMgr managers.DatabaseMgr, documentMgr managers.DocumentMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) *gin.Engine {
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	// Handlers pass the gin context on as context.Context
	router.ContextWithFallback = true

	setupCommonMiddleware(router)
	setupRoutes(router, cfg, databaseMgr, documentMgr, mailMgr, jwtMgr)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Authorization", "Content-Type", "X-Trace-Id"},
		ExposeHeaders:   []string{"Content-Length", "Content-Type", "X-Trace-Id", "RateLimit-Remaining", "RateLimit-Reset"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, cfg *config.Config, databaseMgr managers.DatabaseMgr, documentMgr managers.DocumentMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) {
	healthHdl := handlers.NewHealthHandler(&databaseMgr, &documentMgr, cfg.Server.NodeEnv)
	router.GET("/health", healthHdl.GetHealth)

	// Routes registered above are not rate limited
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Window(), cfg.RateLimit.Max)
	router.Use(rateLimiter.Middleware())

	prefix := "/" + strings.Trim(cfg.Server.APIPrefix, "/")
	apiRouter := router.Group(prefix)
	{
		catalogHdl := handlers.NewCatalogHandler(&documentMgr)
		reviewHdl := handlers.NewReviewHandler(&databaseMgr, &documentMgr)
		catalogRoutes(apiRouter, catalogHdl, reviewHdl, jwtMgr)

		userHdl := handlers.NewUserHandler(&databaseMgr, &documentMgr, &jwtMgr, &mailMgr, cfg.Email.VerifyMX)
		socialHdl := handlers.NewSocialHandler(&databaseMgr)
		libraryHdl := handlers.NewLibraryHandler(&databaseMgr, &documentMgr)
		userRoutes(apiRouter.Group("/users"), userHdl, socialHdl, libraryHdl, jwtMgr)
	}

	router.NoRoute(noRoute(prefix))
}

func catalogRoutes(apiRouter *gin.RouterGroup, catalogHdl handlers.CatalogHdl, reviewHdl handlers.ReviewHdl, jwtMgr managers.JWTMgr) {
	apiRouter.GET("/categories/:name", catalogHdl.GetCategory)
	apiRouter.GET("/categories/:name/subcategories", catalogHdl.GetSubcategories)

	apiRouter.GET("/activities", catalogHdl.GetActivities)
	apiRouter.GET("/activities/nearby", catalogHdl.GetNearbyActivities)
	apiRouter.GET("/activities/:activityId/reviews", reviewHdl.GetReviews)
	apiRouter.GET("/activities/:activityId/reviews/stats", reviewHdl.GetReviewStats)
	apiRouter.POST("/activities/:activityId/reviews", jwtMgr.JWTMiddleware(),
		middleware.ValidateAndSanitizeStruct[schemas.ReviewRequest](), reviewHdl.CreateReview)
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, socialHdl handlers.SocialHdl, libraryHdl handlers.LibraryHdl, jwtMgr managers.JWTMgr) {
	userRouter.POST("", middleware.ValidateAndSanitizeStruct[schemas.RegistrationRequest](), userHdl.RegisterUser)
	userRouter.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), userHdl.LoginUser)
	// The following routes require the user to be authenticated
	userRouter.Use(jwtMgr.JWTMiddleware())
	userRouter.GET("/me", userHdl.GetMe)
	userRouter.DELETE("/me", userHdl.DeleteMe)

	userRouter.GET("/me/saved-activities", libraryHdl.GetSavedActivities)
	userRouter.PUT("/me/saved-activities/:activityId", libraryHdl.SaveActivity)
	userRouter.DELETE("/me/saved-activities/:activityId", libraryHdl.RemoveSavedActivity)
	userRouter.GET("/me/preferences", libraryHdl.GetPreferences)
	userRouter.PUT("/me/preferences/:categoryId", middleware.ValidateAndSanitizeStruct[schemas.PreferenceRequest](), libraryHdl.SetPreference)

	userRouter.POST("/:userId/follow", socialHdl.Follow)
	userRouter.DELETE("/:userId/follow", socialHdl.Unfollow)
	userRouter.GET("/:userId/followers", socialHdl.GetFollowers)
	userRouter.GET("/:userId/following", socialHdl.GetFollowing)
}

// noRoute answers everything below the API prefix that no route matched with the
// API stub, and everything else with a 404 that echoes the path. With the prefix
// "/" every path is below it.
func noRoute(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if prefix == "/" || path == prefix || strings.HasPrefix(path, prefix+"/") {
			utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: apiName}, http.StatusOK)
			return
		}

		utils.LogMessageWithFields(c, "debug", "No route for "+path)
		c.JSON(http.StatusNotFound, &schemas.NotFoundDTO{
			Message: "Not Found",
			Path:    c.Request.RequestURI,
		})
	}
}
