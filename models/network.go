package models

import "time"

const (
	// GuestUserID owns networks that are never persisted.
	GuestUserID = "guest"

	// StartingMoney is the balance of a freshly created network.
	StartingMoney = 10000
)

// Network is a player's complete transit system
type Network struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Money     float64   `json:"money"`
	Stations  []Station `json:"stations"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsGuest reports whether the network belongs to an unpersisted guest session.
func (n Network) IsGuest() bool {
	return n.UserID == GuestUserID
}

// CreateNetworkRequest represents a network creation request
type CreateNetworkRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateMoneyRequest overwrites a network's balance
type UpdateMoneyRequest struct {
	Money *float64 `json:"money" binding:"required"`
}
