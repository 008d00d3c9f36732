package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func CreateProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	product, err := models.UpdateProduct(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func ListProducts(c *gin.Context) {
	products, err := models.ListProducts(c.Request.Context(),
		c.Query("name"), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProductStock returns the availability view the POS stock check uses:
// total on hand plus the batches in the order allocation would consume them.
func GetProductStock(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	stock, err := models.GetProductStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}
