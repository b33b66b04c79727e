package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/artifig/tehnopal/internal/config"
	"github.com/artifig/tehnopal/internal/handlers"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "too many requests, try again later"})
}

// Deps collects everything the route handlers need.
type Deps struct {
	Assessment *handlers.AssessmentHandler
	Reference  *handlers.ReferenceHandler
	Results    *handlers.ResultsHandler
	Export     *handlers.ExportHandler
}

// Setup wires the middleware chain and the API routes.
func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("tehnopal_session", store))

	// Sessions must be initialized before CSRF can use them.
	router.Use(CSRFProtection())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	// Export calls hit the slow external endpoints; keep them rate limited.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.GET("/company-types", deps.Reference.ListCompanyTypes)

		assessment := api.Group("/assessment")
		{
			assessment.POST("", deps.Assessment.Create)
			assessment.POST("/details", deps.Assessment.UpdateDetails)
			assessment.GET("/structure", deps.Assessment.Structure)
			assessment.GET("/question", deps.Assessment.CurrentQuestion)
			assessment.POST("/answer", deps.Assessment.Answer)
			assessment.POST("/next", deps.Assessment.Next)
			assessment.POST("/prev", deps.Assessment.Prev)
			assessment.POST("/sync", deps.Assessment.Sync)

			assessment.GET("/:id/results", deps.Results.ShowResults)
			assessment.POST("/:id/export/pdf", limiter, deps.Export.DownloadPDF)
			assessment.POST("/:id/export/email", limiter, deps.Export.SendEmail)
		}
	}

	return router
}
