package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/bantay-barangay/backend/internal/backend"
	"github.com/bantay-barangay/backend/internal/config"
	"github.com/bantay-barangay/backend/internal/models"
	"github.com/bantay-barangay/backend/internal/services"
)

// UserData represents the structure of users in the JSON file
type UserData struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	UserType    string `json:"userType"`
}

// JSONData represents the structure of the JSON file
type JSONData struct {
	Users []UserData `json:"users"`
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	client, err := buildClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize backend:", err)
	}

	log.Println("Seeding backend with initial accounts...")
	if err := seedUsers(client); err != nil {
		log.Fatal("Error seeding users:", err)
	}

	log.Println("Seeding completed successfully")
}

func seedUsers(client *backend.Client) error {
	usersData, err := os.ReadFile("data/initial-users.json")
	if err != nil {
		return err
	}

	var jsonData JSONData
	if err := json.Unmarshal(usersData, &jsonData); err != nil {
		return err
	}

	auth := services.NewAuthService(client)

	for _, userData := range jsonData.Users {
		userType := models.ParseUserTypeOrDefault(userData.UserType)

		user, err := auth.Register(context.Background(), services.RegisterInput{
			FirstName:   userData.FirstName,
			MiddleName:  userData.MiddleName,
			LastName:    userData.LastName,
			Email:       userData.Email,
			Address:     userData.Address,
			PhoneNumber: userData.PhoneNumber,
			Password:    userData.Password,
			UserType:    userType,
		})
		if err != nil {
			if errors.Is(err, backend.ErrAccountExists) {
				log.Printf("User already exists: %s", userData.Email)
				continue
			}
			log.Printf("Error creating user %s: %v", userData.Email, err)
			continue
		}
		auth.Logout()
		log.Printf("Created user: %s (%s)", user.Email, user.UserType)
	}

	return nil
}

func buildClient(cfg *config.Config) (*backend.Client, error) {
	var store interface {
		backend.PathStore
		backend.BlobStore
	}

	switch cfg.Store.Backend {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, err
		}
		store = backend.NewRedisStore(rdb)
	case config.StorePostgres:
		dsn := backend.PostgresDSN(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)
		pg, err := backend.ConnectPostgres(dsn)
		if err != nil {
			return nil, err
		}
		store = pg
	default:
		store = backend.NewMemoryStore()
	}

	return backend.NewClient(store, store, []byte(cfg.Auth.JWTSecret), cfg.Auth.SessionTTL), nil
}
