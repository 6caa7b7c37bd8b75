package repository

import "time"

// User represents a users row.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Team represents a teams row.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership joins a user to a team with a role.
type Membership struct {
	UserID   string
	TeamID   string
	TeamName string
	Role     string
}

// Item represents an inventory item. Money is stored in cents.
type Item struct {
	ID             string
	TeamID         string
	SKU            string
	Title          string
	Description    string
	Category       string
	Vendor         string
	PriceCents     int64
	CostPriceCents *int64
	Quantity       int
	WeightKg       *float64
	Status         string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tag represents a tag row.
type Tag struct {
	ID   string
	Name string
}
