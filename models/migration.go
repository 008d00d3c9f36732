package models

import (
	"log"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Business{}, &User{},
		&Product{}, &StockBatch{},
		&Customer{},
		&Sale{}, &SaleItem{}, &SaleItemBatch{}, &SalePayment{},
		&IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
