// customer-balance-rebuild recomputes customer running balances from the
// sales ledger. Use after manual data fixes; under normal operation the
// posting workflows keep balances consistent and this tool changes nothing.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/customer-balance-rebuild -business-id <uuid> [-customer-id <id>]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"bitbucket.org/mmdatafocus/pharmacy_backend/workflow"
	"gorm.io/gorm"
)

func main() {
	businessId := flag.String("business-id", "", "Required: business id (uuid)")
	customerId := flag.Int("customer-id", 0, "Optional: rebuild a single customer")
	flag.Parse()

	id := strings.TrimSpace(*businessId)
	if id == "" {
		fmt.Fprintln(os.Stderr, "-business-id is required")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	ctx = utils.SetBusinessIdInContext(ctx, id)
	ctx = utils.SetUserNameInContext(ctx, "CustomerBalanceRebuild")

	if *customerId > 0 {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			balance, err := workflow.RebuildCustomerBalance(tx, ctx, id, *customerId)
			if err != nil {
				return err
			}
			fmt.Printf("customer %d balance rebuilt: %s\n", *customerId, balance.String())
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rebuilt, err := workflow.RebuildAllCustomerBalances(ctx, id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed after %d customers: %v\n", rebuilt, err)
		os.Exit(1)
	}
	fmt.Printf("rebuilt balances for %d customers\n", rebuilt)
}
