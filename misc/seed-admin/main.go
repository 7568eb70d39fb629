// Command seed-admin prints the SQL that creates an administrator account.
// Admin accounts cannot be created through the public registration endpoint,
// so the first one is seeded directly against the database:
//
//	go run ./misc/seed-admin admin admin@example.com <password> | psql "$DATABASE_URL"
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 4 {
		log.Fatal("Usage: seed-admin <username> <email> <password>")
	}

	username := os.Args[1]
	email := strings.ToLower(os.Args[2])
	password := os.Args[3]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Printf(
		"INSERT INTO users (username, email, phone, password_hash, role, is_verified, is_active)\n"+
			"VALUES ('%s', '%s', '', '%s', 'admin', TRUE, TRUE);\n",
		sqlEscape(username), sqlEscape(email), string(hash),
	)
}

// sqlEscape doubles single quotes so the emitted statement stays valid.
// The tool is for operators seeding their own database, not untrusted input.
func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
