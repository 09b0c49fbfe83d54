package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Baaaki/campus-market/internal/config"
	"github.com/Baaaki/campus-market/internal/database"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/utils"
	"gorm.io/gorm"
)

var (
	categories = []string{"Electrónica", "Ropa", "Libros", "Muebles"}
	faculties  = []string{"Ingeniería", "Medicina", "Derecho", "Arquitectura"}
	conditions = []string{"Nuevo", "Como nuevo", "Usado"}
)

func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	// Get admin credentials from env
	adminName := os.Getenv("ADMIN_NAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminName == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_NAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	admin, err := ensureUser(database.DB, adminName, adminEmail, adminPassword, models.RoleAdmin)
	if err != nil {
		log.Fatal("Failed to create admin: ", err)
	}
	log.Println("Admin user ready:", admin.Email)

	if demo, _ := strconv.ParseBool(os.Getenv("SEED_DEMO")); demo {
		if err := seedDemoCatalog(database.DB, cfg.InstitutionalDomain); err != nil {
			log.Fatal("Failed to seed demo catalog: ", err)
		}
	}
}

// ensureUser returns the user with email, creating it when missing.
func ensureUser(db *gorm.DB, name, email, password string, role models.Role) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Hash password using utils.HashPassword (Argon2id)
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// seedDemoCatalog adds two sellers with a product in every category. It is
// skipped once the catalog has rows.
func seedDemoCatalog(db *gorm.DB, domain string) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Catalog already has products, skipping demo data")
		return nil
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "Campus12345"
	}

	var sellers []*models.User
	for _, name := range []string{"ana", "luis"} {
		seller, err := ensureUser(db, name, fmt.Sprintf("%s@%s", name, domain), password, models.RoleUser)
		if err != nil {
			return err
		}
		sellers = append(sellers, seller)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, category := range categories {
			product := &models.Product{
				Name:        fmt.Sprintf("%s de muestra", category),
				Description: "Producto de demostración",
				Price:       uint64(10000 * (i + 1)),
				Category:    category,
				Condition:   conditions[i%len(conditions)],
				Faculty:     faculties[i%len(faculties)],
				Images:      []string{},
				UserID:      sellers[i%len(sellers)].ID,
			}
			if err := tx.Create(product).Error; err != nil {
				return err
			}
		}
		log.Printf("Seeded %d demo products", len(categories))
		return nil
	})
}
