package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// Category is a product category in the local store, mirrored from the
// remote EPOS category tree. EskimoID is the reconciliation join key and is
// unique across the store.
type Category struct {
	ID        string     `json:"id"`
	EskimoID  sync.Ident `json:"eskimo_id"`
	ParentID  string     `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Body      string     `json:"body,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCategory creates a local category from its remote counterpart. parentID
// is the LOCAL id of the already-imported parent, or "" for a root category.
func NewCategory(eskimoID sync.Ident, name, body, parentID string) (*Category, error) {
	name = strings.TrimSpace(name)
	if eskimoID.IsZero() {
		return nil, sync.ErrValidation
	}
	if name == "" {
		return nil, sync.ErrMissingTitle
	}
	now := time.Now()
	return &Category{
		ID:        uuid.New().String(),
		EskimoID:  eskimoID,
		ParentID:  parentID,
		Name:      name,
		Slug:      Slugify(name),
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// Rename updates the display name and slug
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return sync.ErrMissingTitle
	}
	c.Name = name
	c.Slug = Slugify(name)
	c.UpdatedAt = time.Now()
	return nil
}

// Slugify lowercases a title and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByEskimoID(ctx context.Context, eskimoID sync.Ident) (*Category, error)
	FindChildren(ctx context.Context, parentID string) ([]*Category, error)
	FindAll(ctx context.Context, offset, limit int) ([]*Category, int64, error)
	Update(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id string) error
}
