// internal/database/seeder.go
package database

import (
	"context"
	"log"

	"stall-market-api-server/config"
	"stall-market-api-server/internal/auth"
	"stall-market-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the administrator account from configuration if it
// does not exist yet.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		log.Println("Admin credentials not configured. Seeding skipped.")
		return nil
	}

	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": cfg.Email})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin account already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin account not found. Seeding...")
	hashedPassword, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    cfg.Email,
		Name:     "Administrator",
		Password: hashedPassword,
		Role:     auth.RoleAdmin,
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Admin account seeded successfully.")
	return nil
}
