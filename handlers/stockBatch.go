package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func ReceiveStockBatch(c *gin.Context) {
	var input models.NewStockBatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	batch, err := models.ReceiveStockBatch(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// ListExpiringBatches drives the expiry report; default window is 30 days.
func ListExpiringBatches(c *gin.Context) {
	withinDays := queryInt(c, "within_days", 30)
	if withinDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "within_days must be positive"})
		return
	}
	batches, err := models.ListExpiringBatches(c.Request.Context(), withinDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}
