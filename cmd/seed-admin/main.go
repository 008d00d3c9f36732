// seed-admin bootstraps a pharmacy: creates the business (unless -business-id
// points at an existing one) and its owner user.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin -business-name "Shwe Pharmacy" -username owner -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
)

func main() {
	businessId := flag.String("business-id", "", "Optional: attach the owner to an existing business (uuid)")
	businessName := flag.String("business-name", "", "Business name (required when creating a new business)")
	email := flag.String("email", "", "Business contact email")
	timezone := flag.String("timezone", "", "Business timezone (default Asia/Yangon)")
	username := flag.String("username", "", "Required: owner username")
	name := flag.String("name", "", "Owner display name (defaults to username)")
	password := flag.String("password", "", "Required: owner password")
	flag.Parse()

	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*password) == "" {
		fmt.Fprintln(os.Stderr, "-username and -password are required")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	// Seeding runs outside any tenant session.
	ctx = utils.SetIsAdminInContext(ctx, true)
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)
	ctx = utils.SetUserNameInContext(ctx, "SeedAdmin")

	id := strings.TrimSpace(*businessId)
	if id == "" {
		if strings.TrimSpace(*businessName) == "" {
			fmt.Fprintln(os.Stderr, "-business-name is required when -business-id is not given")
			os.Exit(2)
		}
		business, err := models.CreateBusiness(ctx, &models.NewBusiness{
			Name:     strings.TrimSpace(*businessName),
			Email:    strings.TrimSpace(*email),
			Timezone: strings.TrimSpace(*timezone),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create business: %v\n", err)
			os.Exit(1)
		}
		id = business.ID.String()
		fmt.Printf("created business %s (%s)\n", business.Name, id)
	} else {
		if _, err := models.GetBusinessById(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "failed to lookup business %s: %v\n", id, err)
			os.Exit(1)
		}
	}

	ownerName := strings.TrimSpace(*name)
	if ownerName == "" {
		ownerName = strings.TrimSpace(*username)
	}
	user, err := models.CreateUser(ctx, id, &models.NewUser{
		Username: strings.TrimSpace(*username),
		Name:     ownerName,
		Password: *password,
		Role:     models.UserRoleOwner,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create owner user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created owner user %s (id=%d) for business %s\n", user.Username, user.ID, id)
}
