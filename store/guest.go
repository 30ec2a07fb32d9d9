package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"transport-net/models"
)

// GuestStore backs guest sessions. Writes are accepted and discarded, and
// identifiers are local tokens that are never sent anywhere.
type GuestStore struct {
	seq atomic.Int64
	now func() time.Time
}

// NewGuestStore creates a guest store.
func NewGuestStore() *GuestStore {
	return &GuestStore{now: time.Now}
}

// NewID returns a timestamp-based local token.
func (s *GuestStore) NewID() string {
	return fmt.Sprintf("local-%d-%d", s.now().UnixMilli(), s.seq.Add(1))
}

// GetNetworks always returns no networks: guests start from scratch.
func (s *GuestStore) GetNetworks(ctx context.Context) ([]models.Network, error) {
	return nil, nil
}

// GetNetwork always fails with ErrNotFound.
func (s *GuestStore) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	return nil, fmt.Errorf("network %s: %w", id, ErrNotFound)
}

// CreateNetwork returns a fresh guest network.
func (s *GuestStore) CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error) {
	return &models.Network{
		ID:        defaultString(req.ID, s.NewID()),
		UserID:    models.GuestUserID,
		Name:      defaultString(req.Name, "Guest network"),
		Money:     models.StartingMoney,
		Stations:  []models.Station{},
		Lines:     []models.Line{},
		CreatedAt: s.now(),
	}, nil
}

func (s *GuestStore) UpdateNetworkMoney(ctx context.Context, networkID string, money float64) error {
	return nil
}

func (s *GuestStore) CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error) {
	return &models.Station{
		ID:        req.ID,
		NetworkID: req.NetworkID,
		Name:      req.Name,
		X:         req.X,
		Y:         req.Y,
		Type:      defaultString(req.Type, models.DefaultLineType),
		Cost:      req.Cost,
		Revenue:   models.DefaultStationRevenue,
		CreatedAt: s.now(),
	}, nil
}

func (s *GuestStore) DeleteStation(ctx context.Context, id string) error { return nil }

func (s *GuestStore) CreateLine(ctx context.Context, req models.CreateLineRequest) (*models.Line, error) {
	return &models.Line{
		ID:        req.ID,
		NetworkID: req.NetworkID,
		Name:      req.Name,
		Color:     req.Color,
		Type:      defaultString(req.Type, models.DefaultLineType),
		Stations:  []models.LineStop{},
		CreatedAt: s.now(),
	}, nil
}

func (s *GuestStore) AddStationToLine(ctx context.Context, lineID, stationID string) (*models.LineStop, error) {
	return &models.LineStop{StationID: stationID}, nil
}

func (s *GuestStore) DeleteLine(ctx context.Context, id string) error { return nil }

func (s *GuestStore) Close() error { return nil }
