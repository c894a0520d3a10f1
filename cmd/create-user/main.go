package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"letterhead/config"
	"letterhead/db"
	"letterhead/models"
	"letterhead/services"

	"golang.org/x/term"
)

func main() {
	plan := flag.String("plan", models.PlanFree, "plan for the new account (FREE or PRO)")
	admin := flag.Bool("admin", false, "create the account with the admin role")
	flag.Parse()

	*plan = strings.ToUpper(*plan)
	if *plan != models.PlanFree && *plan != models.PlanPro {
		log.Fatalf("Unknown plan %q", *plan)
	}

	cfg := config.Load()

	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Letterhead account ===")
	fmt.Println()

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	password := string(passwordBytes)
	fmt.Println()

	user, err := services.RegisterUser(db.DB, name, email, password)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	updates := map[string]interface{}{"plan": *plan}
	if *admin {
		updates["role"] = models.RoleAdmin
	}
	if err := db.DB.Model(user).Updates(updates).Error; err != nil {
		log.Fatalf("Failed to set plan: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ User created successfully!")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Name: %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Plan: %s\n", user.Plan)
	fmt.Printf("  Role: %s\n", user.Role)
	fmt.Println()
	fmt.Printf("The user can now log in at %s/login\n", cfg.AppURL)
}
