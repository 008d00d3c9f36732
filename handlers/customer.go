package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateCustomer(c *gin.Context) {
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func UpdateCustomer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewCustomer
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func GetCustomer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func ListCustomers(c *gin.Context) {
	customers, err := models.ListCustomers(c.Request.Context(),
		c.Query("name"), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// GetCustomerBalance reports the credit position: running balance against the
// limit, plus the remaining headroom (null when the limit is 0 = unlimited).
func GetCustomerBalance(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	customer, err := models.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"customer_id":     customer.ID,
		"credit_limit":    customer.CreditLimit,
		"current_balance": customer.CurrentBalance,
	}
	if customer.CreditLimit.IsPositive() {
		resp["available_credit"] = customer.CreditLimit.Sub(customer.CurrentBalance)
	} else {
		resp["available_credit"] = nil
	}
	c.JSON(http.StatusOK, resp)
}
