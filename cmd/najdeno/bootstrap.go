package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// initDatabase creates a new database with the schema and an admin user, and
// returns the admin's generated password. A partially created file is removed.
func initDatabase(path, adminUsername string) (password string, err error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		database.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := db.Migrate(database); err != nil {
		return "", fmt.Errorf("creating schema: %w", err)
	}

	password, err = generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(context.Background(), database, adminUsername, string(hash), model.RoleAdmin, ""); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
