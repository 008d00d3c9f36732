package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateSale posts a sale through the FEFO allocation workflow. Clients may
// send an Idempotency-Key header; retried POSTs with the same key return 409
// instead of double-posting.
func CreateSale(c *gin.Context) {
	var input models.NewSale
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	sale, err := workflow.RecordSale(c.Request.Context(), &input, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func GetSale(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	sale, err := models.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func ListSales(c *gin.Context) {
	status := models.SalePaymentStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	sales, err := models.ListSales(c.Request.Context(),
		queryInt(c, "customer_id", 0), status,
		queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// CreateSalePayment applies a payment to a sale and advances its status.
func CreateSalePayment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSalePayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	sale, err := workflow.RecordPayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func ListSalePayments(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	// 404 for unknown or foreign-tenant sales before listing.
	if _, err := models.GetSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	payments, err := models.ListSalePayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
