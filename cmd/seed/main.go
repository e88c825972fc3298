package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/rosterhq/roster/config"
	"github.com/rosterhq/roster/pkg/helpers"
)

type seedUser struct {
	name     string
	email    string
	password string
	active   bool
}

var seedUsers = []seedUser{
	{name: "John Doe", email: "john.doe@example.com", password: "password123", active: true},
	{name: "Jane Smith", email: "jane.smith@example.com", password: "password123", active: true},
	{name: "Alice Johnson", email: "alice.johnson@example.com", password: "password123", active: true},
	{name: "Bob Brown", email: "bob.brown@example.com", password: "password123", active: false},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, u := range seedUsers {
		hash, err := helpers.HashPassword(u.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		var id string
		err = db.QueryRow(`
			INSERT INTO users (name, email, password_hash, is_active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT ((lower(email))) DO UPDATE
			SET name = EXCLUDED.name, is_active = EXCLUDED.is_active, updated_at = now()
			RETURNING id
		`, u.name, u.email, hash, u.active).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s active=%v\n", id, u.email, u.active)
	}
}
