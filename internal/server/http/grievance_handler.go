package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citizendesk/grievance-server/internal/server/services"
)

type GrievanceHandler struct {
	grievances *services.GrievanceService
}

func NewGrievanceHandler(grievances *services.GrievanceService) *GrievanceHandler {
	return &GrievanceHandler{grievances: grievances}
}

type deleteGrievancesRequest struct {
	GrievanceIDs []int64 `json:"grievanceIds" binding:"required,min=1"`
}

// DeleteGrievances handles DELETE /grievances.
func (h *GrievanceHandler) DeleteGrievances(c *gin.Context) {
	var req deleteGrievancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.grievances.DeleteGrievances(c.Request.Context(), req.GrievanceIDs); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": req.GrievanceIDs})
}
