// Package store defines the NetworkStore capability interface used to persist
// a network, and its implementations:
//   - GuestStore: local-only, for guest sessions; nothing leaves the process
//   - MemoryStore: a complete in-memory backend for development and tests
//   - SQLStore: PostgreSQL or SQLite through database/sql
//   - RemoteStore: a client for the REST API served by package handlers
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"transport-net/models"
	"transport-net/network"
)

// The store shares the network graph's error taxonomy so callers can test
// either layer's failures with errors.Is.
var (
	ErrNotFound          = network.ErrNotFound
	ErrInsufficientFunds = network.ErrInsufficientFunds
	ErrStationInUse      = network.ErrStationInUse
	ErrInvalidEndpoints  = network.ErrInvalidEndpoints

	// ErrInvalidID rejects a client-chosen identifier that is not a UUID.
	ErrInvalidID = errors.New("invalid id")
)

// NetworkStore persists one user's networks.
type NetworkStore interface {
	// NewID returns an identifier for a station, line or network created locally.
	NewID() string

	GetNetworks(ctx context.Context) ([]models.Network, error)
	GetNetwork(ctx context.Context, id string) (*models.Network, error)
	CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error)
	UpdateNetworkMoney(ctx context.Context, networkID string, money float64) error

	CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error)
	DeleteStation(ctx context.Context, id string) error

	CreateLine(ctx context.Context, req models.CreateLineRequest) (*models.Line, error)
	AddStationToLine(ctx context.Context, lineID, stationID string) (*models.LineStop, error)
	DeleteLine(ctx context.Context, id string) error

	Close() error
}

// Repository hands out stores scoped to a user.
type Repository interface {
	ForUser(userID string) NetworkStore
	Close() error
}

// PersistenceError reports a store call that failed after the local state
// was already committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// resolveID returns id when it is a valid UUID, a fresh UUID when it is empty.
func resolveID(id string) (string, error) {
	if id == "" {
		return uuid.NewString(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return id, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var (
	errOutboxClosed = errors.New("outbox closed")
	errOutboxFull   = errors.New("outbox full")
)
