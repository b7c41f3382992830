package trade

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ontiuk/eskimo-sync/internal/domain/sync"
)

// Customer is a local store customer. EskimoID holds the remote customer ID
// once the customer has been linked or created remotely; until then it is
// empty and orders for the customer cannot be exported.
type Customer struct {
	ID        string    `json:"id"`
	EskimoID  string    `json:"eskimo_id,omitempty"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	Surname   string    `json:"surname"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Billing   Address   `json:"billing"`
	Shipping  Address   `json:"shipping"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCustomer creates a local customer
func NewCustomer(email, firstName, surname string) (*Customer, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, sync.ErrValidation
	}
	now := time.Now()
	return &Customer{
		ID:        uuid.New().String(),
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		Surname:   strings.TrimSpace(surname),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Linked reports whether the customer holds a remote mapping
func (c *Customer) Linked() bool {
	return c.EskimoID != ""
}

// Link records the remote customer ID
func (c *Customer) Link(eskimoID string) error {
	if eskimoID == "" || eskimoID == "0" {
		return sync.ErrValidation
	}
	c.EskimoID = eskimoID
	c.UpdatedAt = time.Now()
	return nil
}

// FullName returns the display name used on remote address blocks
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.Surname)
}

// Address is a billing or shipping address on a customer or order
type Address struct {
	Name     string `json:"name,omitempty"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	PostCode string `json:"post_code"`
	Country  string `json:"country"`
}

// IsZero reports whether the address carries no usable destination
func (a Address) IsZero() bool {
	return a.Line1 == "" && a.City == "" && a.PostCode == ""
}

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByEskimoID(ctx context.Context, eskimoID string) (*Customer, error)
	FindAll(ctx context.Context, offset, limit int) ([]*Customer, int64, error)
	Update(ctx context.Context, customer *Customer) error
}
