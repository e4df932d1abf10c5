package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citizendesk/grievance-server/internal/logging"
	sc "github.com/citizendesk/grievance-server/internal/server/config"
	"github.com/citizendesk/grievance-server/internal/server/services"
)

// NewRouter wires middleware, handlers, and routes into a gin engine.
func NewRouter(
	attachments *services.AttachmentService,
	grievances *services.GrievanceService,
	cfg *sc.Config,
	logger logging.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(LoggerMiddleware(logger))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	attachmentHandler := NewAttachmentHandler(attachments)
	grievanceHandler := NewGrievanceHandler(grievances)

	api := router.Group("/api")
	api.Use(AuthMiddleware([]byte(cfg.SecretKey)))
	{
		uploads := api.Group("/attachments")
		uploads.Use(RequireUpload())
		{
			uploads.POST("/presigned-url", attachmentHandler.PresignUpload)
			uploads.POST("/presigned-urls", attachmentHandler.PresignBulkUpload)
			uploads.POST("/confirm", attachmentHandler.ConfirmUpload)
		}

		api.GET("/grievances/:id/attachments", RequireUpload(), attachmentHandler.ListAttachments)

		privileged := api.Group("")
		privileged.Use(RequireManage())
		{
			privileged.POST("/attachments/upload", attachmentHandler.ServerUpload)
			privileged.DELETE("/grievances", grievanceHandler.DeleteGrievances)
		}
	}

	return router
}
