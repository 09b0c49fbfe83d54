package testutil

import (
	"fmt"
	"testing"

	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/utils"
	"gorm.io/gorm"
)

// TestPassword is the plain password of every fixture user
const TestPassword = "Test123456"

// CreateTestUser builds a user with a hashed password without saving it
func CreateTestUser(name, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}, nil
}

// MustCreateUser saves a user with TestPassword and fails the test on error
func MustCreateUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	email := fmt.Sprintf("%s@correounivalle.edu.co", name)
	user, err := CreateTestUser(name, email, TestPassword, role)
	if err != nil {
		t.Fatalf("Failed to build user: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// ProductOption tweaks a fixture product before it is saved
type ProductOption func(*models.Product)

func WithCategory(category string) ProductOption {
	return func(p *models.Product) { p.Category = category }
}

func WithFaculty(faculty string) ProductOption {
	return func(p *models.Product) { p.Faculty = faculty }
}

func WithImages(images ...string) ProductOption {
	return func(p *models.Product) { p.Images = images }
}

// MustCreateProduct saves a product owned by ownerID
func MustCreateProduct(t *testing.T, db *gorm.DB, ownerID uint, name string, opts ...ProductOption) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Description: "Fixture product",
		Price:       10000,
		Category:    "Libros",
		Condition:   "Usado",
		Faculty:     "Ingeniería",
		Images:      []string{"products/fixture.png"},
		UserID:      ownerID,
	}
	for _, opt := range opts {
		opt(product)
	}

	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return product
}
