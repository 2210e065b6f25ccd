// Command seed-admin creates (or reports) an administrator account.
//
//	go run ./cmd/seed-admin -email admin@example.org -password secret123
package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"peer-eval-api/config"
	"peer-eval-api/models"
	"peer-eval-api/utils"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if ok, msg := utils.ValidatePassword(*password); !ok {
		log.Fatal(msg)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	config.InitDB()

	addr := strings.ToLower(strings.TrimSpace(*email))

	var existing models.User
	if err := config.DB.Where("email = ?", addr).First(&existing).Error; err == nil {
		log.Printf("Admin already exists: %s", addr)
		return
	}

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	user := models.User{Email: addr, PasswordHash: hashed, CreateAt: &now}
	if err := config.DB.Create(&user).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Created admin user: %s", addr)
}
