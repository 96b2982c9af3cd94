package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"lab-reservation-backend/config"
	"lab-reservation-backend/internal/db"
	"lab-reservation-backend/internal/model"
	"lab-reservation-backend/internal/mw"
	"lab-reservation-backend/internal/store"
)

// seed provisions an admin account and a few example resources so a fresh
// database is immediately usable, and prints a development token for the
// admin. Safe to run repeatedly.
func main() {
	adminID := flag.String("id", "admin-1", "stable identifier for the admin account")
	adminEmail := flag.String("email", "admin@example.edu", "admin email address")
	adminName := flag.String("name", "Lab Admin", "admin display name")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	st := store.NewGormStore(gormDB)
	ctx := context.Background()

	admin := &model.User{ID: *adminID, Email: *adminEmail, Name: *adminName, Role: model.RoleAdmin}
	if err := st.UpsertUser(ctx, admin); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}
	log.Printf("admin user %s (%s) ready", admin.Name, admin.Email)

	resources := []model.Resource{
		{ID: "seed-gpu-1", Name: "GPU Node 1", Location: "Lab 2", Specification: "2x A100 80GB, 512 GB RAM"},
		{ID: "seed-gpu-2", Name: "GPU Node 2", Location: "Lab 2", Specification: "4x RTX 4090, 256 GB RAM"},
		{ID: "seed-fpga-1", Name: "FPGA Bench", Location: "Lab 3", Specification: "Xilinx Alveo U250"},
	}
	for _, res := range resources {
		res := res
		if _, err := st.GetResource(ctx, res.ID); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Fatalf("failed to look up resource %s: %v", res.ID, err)
		}
		res.Status = model.ResourceAvailable
		if err := st.CreateResource(ctx, &res); err != nil {
			log.Fatalf("failed to seed resource %s: %v", res.Name, err)
		}
		log.Printf("resource %s created", res.Name)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Println("no JWT secret configured, skipping development token")
		return
	}
	token, err := mw.Sign(cfg.Auth.JWTSecret, admin, 24*time.Hour)
	if err != nil {
		log.Fatalf("failed to sign development token: %v", err)
	}
	log.Printf("development token (24h):\n%s", token)
}
