// createuser is a one-shot bootstrap tool that inserts an account directly,
// bypassing the admin-only API path. Run it once to create the first admin,
// then manage further accounts through the API.
//
// Usage: go run ./cmd/createuser -username admin -password <pw> -role admin
package main

import (
	"context"
	"flag"
	"log"

	"boq-procurement/internal/core"
	"boq-procurement/internal/db"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "", "login username (required)")
	password := flag.String("password", "", "initial password (required)")
	role := flag.String("role", core.RoleStaff, "account role: admin or staff")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("both -username and -password are required")
	}
	if *role != core.RoleAdmin && *role != core.RoleStaff {
		log.Fatalf("unknown role %q", *role)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var id int
	err = pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		*username, string(hash), *role, *name,
	).Scan(&id)
	if err != nil {
		log.Fatalf("Failed to insert user: %v", err)
	}

	log.Printf("Created %s user %q (id %d)", *role, *username, id)
}
