package handlers

import (
	"bitbucket.org/mmdatafocus/pharmacy_backend/middlewares"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API surface. Everything except login sits behind
// the auth gate; stock mutation and customer management additionally require
// a managerial role.
func RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", Login)

	api := r.Group("/")
	api.Use(middlewares.RequireAuth())
	{
		api.GET("/products", ListProducts)
		api.GET("/products/:id", GetProduct)
		api.GET("/products/:id/stock", GetProductStock)

		api.GET("/stock-batches/expiring", ListExpiringBatches)

		api.GET("/customers", ListCustomers)
		api.GET("/customers/:id", GetCustomer)
		api.GET("/customers/:id/balance", GetCustomerBalance)

		api.POST("/sales", CreateSale)
		api.GET("/sales", ListSales)
		api.GET("/sales/:id", GetSale)
		api.POST("/sales/:id/payments", CreateSalePayment)
		api.GET("/sales/:id/payments", ListSalePayments)

		api.GET("/dashboard/summary", GetDashboardSummary)
	}

	management := r.Group("/")
	management.Use(middlewares.RequireAuth(),
		middlewares.RequireRole(models.UserRoleOwner, models.UserRoleManager))
	{
		management.POST("/products", CreateProduct)
		management.PUT("/products/:id", UpdateProduct)

		management.POST("/stock-batches", ReceiveStockBatch)

		management.POST("/customers", CreateCustomer)
		management.PUT("/customers/:id", UpdateCustomer)
	}
}
