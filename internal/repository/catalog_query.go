package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Scope selects whose products a catalog query sees.
type Scope int

const (
	// ScopeFeed is the buyer feed: everyone's products except the actor's.
	ScopeFeed Scope = iota
	// ScopeOwn is "my listings": only the actor's products.
	ScopeOwn
	// ScopeAll is the moderation view over every product.
	ScopeAll
)

// ProductFilter is the single description of a catalog listing. Empty string
// fields mean "no filter".
type ProductFilter struct {
	ActorID  uint
	Scope    Scope
	Search   string
	Category string
	Faculty  string
	Page     int
	PageSize int
}

// Normalize trims the text filters and applies page defaults.
func (f ProductFilter) Normalize() ProductFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	f.Faculty = strings.TrimSpace(f.Faculty)
	f.Page, f.PageSize = NormalizePage(f.Page, f.PageSize)
	return f
}

// Apply adds the filter's WHERE conditions to db. Ordering and paging are
// added separately so the same conditions drive the count query.
func (f ProductFilter) Apply(db *gorm.DB) *gorm.DB {
	switch f.Scope {
	case ScopeFeed:
		db = db.Where("products.user_id <> ?", f.ActorID)
	case ScopeOwn:
		db = db.Where("products.user_id = ?", f.ActorID)
	}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		db = db.Where(
			"(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(products.category) LIKE ? ESCAPE '\\' OR LOWER(products.faculty) LIKE ? ESCAPE '\\')",
			pattern, pattern, pattern,
		)
	}
	if f.Category != "" {
		db = db.Where("products.category = ?", f.Category)
	}
	if f.Faculty != "" {
		db = db.Where("products.faculty = ?", f.Faculty)
	}
	return db
}

// Order sorts the feed in insertion order and the owner/admin views newest first.
func (f ProductFilter) Order(db *gorm.DB) *gorm.DB {
	if f.Scope == ScopeFeed {
		return db.Order("products.id ASC")
	}
	return db.Order("products.created_at DESC").Order("products.id DESC")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
