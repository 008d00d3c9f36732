package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func GetDashboardSummary(c *gin.Context) {
	summary, err := models.GetDashboardSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
