package database

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"teamhub/internal/domain/chat"
	"teamhub/internal/domain/user"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminUsername string
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminEmail:    "admin@teamhub.local",
		AdminPassword: "Admin@123!",
		AdminUsername: "admin",
	}
}

// Seed creates the admin account and the default chat room when they are
// missing. Safe to run on every startup.
func Seed(cfg *SeedConfig) error {
	if cfg == nil {
		cfg = DefaultSeedConfig()
	}

	admin, err := seedAdminUser(cfg)
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := seedGeneralRoom(admin.ID); err != nil {
		return fmt.Errorf("failed to seed default room: %w", err)
	}

	log.Println("Database seeding complete")
	return nil
}

func seedAdminUser(cfg *SeedConfig) (*user.User, error) {
	var existing user.User
	err := DB.Where("username = ?", cfg.AdminUsername).First(&existing).Error
	if err == nil {
		return &existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := user.User{
		ID:           uuid.New(),
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		Status:       user.StatusOnline,
		CreatedAt:    time.Now(),
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}

	log.Printf("Seeded admin user %q", cfg.AdminUsername)
	return &admin, nil
}

func seedGeneralRoom(adminID uuid.UUID) error {
	var existing chat.Room
	err := DB.Where("name = ?", chat.GeneralRoomName).First(&existing).Error
	if err == nil {
		return nil
	}

	room := chat.Room{
		ID:          uuid.New(),
		Name:        chat.GeneralRoomName,
		Description: "Default chat room for all team members",
		CreatedBy:   adminID,
		CreatedAt:   time.Now(),
	}
	if err := DB.Create(&room).Error; err != nil {
		return err
	}

	log.Printf("Seeded room %q", chat.GeneralRoomName)
	return nil
}
