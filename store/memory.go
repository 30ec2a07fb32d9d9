package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"transport-net/models"
)

type memoryData struct {
	mu       sync.RWMutex
	networks []*models.Network
}

// MemoryStore implements NetworkStore in process memory. It applies the same
// ownership and funds rules as SQLStore and is used by the server's "memory"
// driver and by tests.
type MemoryStore struct {
	data   *memoryData
	userID string
	now    func() time.Time
}

// NewMemoryStore creates an empty store. Use ForUser to obtain a scoped view.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{}, now: time.Now}
}

// ForUser returns a view of the store limited to userID's networks.
func (s *MemoryStore) ForUser(userID string) NetworkStore {
	return &MemoryStore{data: s.data, userID: userID, now: s.now}
}

// NewID returns a random UUID.
func (s *MemoryStore) NewID() string { return uuid.NewString() }

func (s *MemoryStore) GetNetworks(ctx context.Context) ([]models.Network, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	var out []models.Network
	for _, n := range s.data.networks {
		if n.UserID == s.userID {
			out = append(out, cloneNetwork(n))
		}
	}
	return out, nil
}

func (s *MemoryStore) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	n, err := s.network(id)
	if err != nil {
		return nil, err
	}
	c := cloneNetwork(n)
	return &c, nil
}

func (s *MemoryStore) CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	n := &models.Network{
		ID:        id,
		UserID:    s.userID,
		Name:      defaultString(req.Name, "New network"),
		Money:     models.StartingMoney,
		Stations:  []models.Station{},
		Lines:     []models.Line{},
		CreatedAt: s.now().UTC(),
	}
	s.data.networks = append(s.data.networks, n)
	c := cloneNetwork(n)
	return &c, nil
}

func (s *MemoryStore) UpdateNetworkMoney(ctx context.Context, networkID string, money float64) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	n, err := s.network(networkID)
	if err != nil {
		return err
	}
	n.Money = money
	return nil
}

func (s *MemoryStore) CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	n, err := s.network(req.NetworkID)
	if err != nil {
		return nil, err
	}
	if n.Money < req.Cost {
		return nil, fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientFunds, req.Cost, n.Money)
	}

	st := models.Station{
		ID:        id,
		NetworkID: n.ID,
		Name:      req.Name,
		X:         req.X,
		Y:         req.Y,
		Type:      defaultString(req.Type, models.DefaultLineType),
		Cost:      req.Cost,
		Revenue:   models.DefaultStationRevenue,
		CreatedAt: s.now().UTC(),
	}
	n.Stations = append(n.Stations, st)
	n.Money -= req.Cost
	return &st, nil
}

func (s *MemoryStore) DeleteStation(ctx context.Context, id string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	for _, n := range s.owned() {
		for i, st := range n.Stations {
			if st.ID != id {
				continue
			}
			for _, l := range n.Lines {
				if l.References(id) {
					return fmt.Errorf("station %s: %w", id, ErrStationInUse)
				}
			}
			n.Stations = append(n.Stations[:i], n.Stations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("station %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) CreateLine(ctx context.Context, req models.CreateLineRequest) (*models.Line, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	n, err := s.network(req.NetworkID)
	if err != nil {
		return nil, err
	}

	l := models.Line{
		ID:        id,
		NetworkID: n.ID,
		Name:      req.Name,
		Color:     defaultString(req.Color, "#FF0000"),
		Type:      defaultString(req.Type, models.DefaultLineType),
		Stations:  []models.LineStop{},
		CreatedAt: s.now().UTC(),
	}
	n.Lines = append(n.Lines, l)
	c := cloneLine(l)
	return &c, nil
}

func (s *MemoryStore) AddStationToLine(ctx context.Context, lineID, stationID string) (*models.LineStop, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	for _, n := range s.owned() {
		for i := range n.Lines {
			if n.Lines[i].ID != lineID {
				continue
			}
			found := false
			for _, st := range n.Stations {
				if st.ID == stationID {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("station %s: %w", stationID, ErrNotFound)
			}
			stop := models.LineStop{StationID: stationID, Order: len(n.Lines[i].Stations)}
			n.Lines[i].Stations = append(n.Lines[i].Stations, stop)
			return &stop, nil
		}
	}
	return nil, fmt.Errorf("line %s: %w", lineID, ErrNotFound)
}

func (s *MemoryStore) DeleteLine(ctx context.Context, id string) error {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	for _, n := range s.owned() {
		for i := range n.Lines {
			if n.Lines[i].ID == id {
				n.Lines = append(n.Lines[:i], n.Lines[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("line %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) Close() error { return nil }

// network returns the caller's network; the lock must be held.
func (s *MemoryStore) network(id string) (*models.Network, error) {
	for _, n := range s.data.networks {
		if n.ID == id && n.UserID == s.userID {
			return n, nil
		}
	}
	return nil, fmt.Errorf("network %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) owned() []*models.Network {
	var out []*models.Network
	for _, n := range s.data.networks {
		if n.UserID == s.userID {
			out = append(out, n)
		}
	}
	return out
}

func cloneNetwork(n *models.Network) models.Network {
	c := *n
	c.Stations = append([]models.Station{}, n.Stations...)
	c.Lines = make([]models.Line, len(n.Lines))
	for i, l := range n.Lines {
		c.Lines[i] = cloneLine(l)
	}
	return c
}

func cloneLine(l models.Line) models.Line {
	l.Stations = append([]models.LineStop{}, l.Stations...)
	return l
}
