package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/somnia-app/somnia/backend/internal/router"
	"github.com/somnia-app/somnia/backend/pkg/config"
	"github.com/somnia-app/somnia/backend/pkg/firebase"
	"github.com/somnia-app/somnia/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseApp.AuthClient, firebaseApp.MessagingClient)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
