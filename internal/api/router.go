package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/funpages/internal/api/handler"
	"github.com/timmy/funpages/internal/api/middleware"
	"github.com/timmy/funpages/internal/config"
	"github.com/timmy/funpages/internal/logger"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/web"
)

// multipartMemory is how much of an upload Gin keeps in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	complimentService *service.ComplimentService,
	animalService *service.AnimalService,
	imageFilterService *service.ImageFilterService,
	gifSearchService *service.GIFSearchService,
	cfg *config.Config,
	log *logger.Logger,
) (*gin.Engine, error) {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = multipartMemory
	r.SetHTMLTemplate(tmpl)

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	complimentHandler := handler.NewComplimentHandler(complimentService)
	animalHandler := handler.NewAnimalHandler(animalService)
	imageFilterHandler := handler.NewImageFilterHandler(imageFilterService)
	gifSearchHandler := handler.NewGIFSearchHandler(gifSearchService, cfg.Tenor.DefaultLimit)

	// Health check
	r.GET("/health", healthHandler.Health)

	// Pages
	r.GET("/", handler.Home)

	r.GET("/compliments", complimentHandler.Form)
	r.GET("/compliments_results", complimentHandler.Results)

	r.GET("/animal_facts", animalHandler.Facts)

	r.GET("/image_filter", imageFilterHandler.Form)
	r.POST("/image_filter", middleware.BodyLimit(cfg.MaxUploadBytes()), imageFilterHandler.Upload)

	r.GET("/gif_search", gifSearchHandler.Form)
	r.POST("/gif_search", gifSearchHandler.Search)

	// Uploaded artifacts are served from here when storage is local.
	r.Static("/static", cfg.Server.StaticDir)

	return r, nil
}
