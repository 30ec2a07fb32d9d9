package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"transport-net/database"
	"transport-net/models"
)

// SQLStore implements NetworkStore on PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
	userID  string
	owner   bool
	logger  *slog.Logger
	now     func() time.Time
}

// NewSQLStore wraps an open, migrated database. The returned store owns db and
// closes it on Close; views returned by ForUser do not.
func NewSQLStore(db *sql.DB, dialect database.Dialect, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{
		db:      db,
		dialect: dialect,
		owner:   true,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ForUser returns a view of the store limited to userID's networks.
func (s *SQLStore) ForUser(userID string) NetworkStore {
	c := *s
	c.userID = userID
	c.owner = false
	return &c
}

// NewID returns a random UUID.
func (s *SQLStore) NewID() string { return uuid.NewString() }

// forUpdate appends a row lock on dialects that support one. SQLite
// serializes writers on its own.
func (s *SQLStore) forUpdate(query string) string {
	if s.dialect == database.Postgres {
		return query + " FOR UPDATE"
	}
	return query
}

// GetNetworks retrieves every network of the user with stations and lines
func (s *SQLStore) GetNetworks(ctx context.Context) ([]models.Network, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, money, created_at
		FROM networks
		WHERE user_id = $1
		ORDER BY created_at, id
	`, s.userID)
	if err != nil {
		return nil, fmt.Errorf("error querying networks: %w", err)
	}
	defer rows.Close()

	var networks []models.Network
	for rows.Next() {
		var n models.Network
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &n.Money, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning network: %w", err)
		}
		networks = append(networks, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range networks {
		if err := s.loadContents(ctx, &networks[i]); err != nil {
			return nil, err
		}
	}
	return networks, nil
}

// GetNetwork retrieves one network of the user
func (s *SQLStore) GetNetwork(ctx context.Context, id string) (*models.Network, error) {
	var n models.Network
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, money, created_at
		FROM networks
		WHERE id = $1 AND user_id = $2
	`, id, s.userID).Scan(&n.ID, &n.UserID, &n.Name, &n.Money, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("network %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if err := s.loadContents(ctx, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// loadContents fills the network's stations and its lines' ordered stops.
func (s *SQLStore) loadContents(ctx context.Context, n *models.Network) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, network_id, name, x, y, type, cost, revenue, created_at
		FROM stations
		WHERE network_id = $1
		ORDER BY seq
	`, n.ID)
	if err != nil {
		return fmt.Errorf("error querying stations: %w", err)
	}
	n.Stations = []models.Station{}
	byID := make(map[string]models.Station)
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.NetworkID, &st.Name, &st.X, &st.Y, &st.Type, &st.Cost, &st.Revenue, &st.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("error scanning station: %w", err)
		}
		n.Stations = append(n.Stations, st)
		byID[st.ID] = st
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, network_id, name, color, type, created_at
		FROM lines
		WHERE network_id = $1
		ORDER BY seq
	`, n.ID)
	if err != nil {
		return fmt.Errorf("error querying lines: %w", err)
	}
	n.Lines = []models.Line{}
	lineIdx := make(map[string]int)
	for rows.Next() {
		var l models.Line
		if err := rows.Scan(&l.ID, &l.NetworkID, &l.Name, &l.Color, &l.Type, &l.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("error scanning line: %w", err)
		}
		l.Stations = []models.LineStop{}
		lineIdx[l.ID] = len(n.Lines)
		n.Lines = append(n.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT ls.line_id, ls.station_id, ls.stop_order
		FROM line_stations ls
		JOIN lines l ON l.id = ls.line_id
		WHERE l.network_id = $1
		ORDER BY ls.line_id, ls.stop_order
	`, n.ID)
	if err != nil {
		return fmt.Errorf("error querying line stations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lineID string
		var stop models.LineStop
		if err := rows.Scan(&lineID, &stop.StationID, &stop.Order); err != nil {
			return fmt.Errorf("error scanning line station: %w", err)
		}
		if st, ok := byID[stop.StationID]; ok {
			stop.Station = &st
		}
		i := lineIdx[lineID]
		n.Lines[i].Stations = append(n.Lines[i].Stations, stop)
	}
	return rows.Err()
}

// CreateNetwork creates a network funded with the starting balance
func (s *SQLStore) CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	n := models.Network{
		ID:        id,
		UserID:    s.userID,
		Name:      defaultString(req.Name, "New network"),
		Money:     models.StartingMoney,
		Stations:  []models.Station{},
		Lines:     []models.Line{},
		CreatedAt: s.now(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO networks (id, user_id, name, money, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Name, n.Money, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}

	s.logger.Info("network created", "network", n.ID, "user", s.userID)
	return &n, nil
}

// UpdateNetworkMoney overwrites the stored balance
func (s *SQLStore) UpdateNetworkMoney(ctx context.Context, networkID string, money float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE networks SET money = $1
		WHERE id = $2 AND user_id = $3
	`, money, networkID, s.userID)
	if err != nil {
		return fmt.Errorf("failed to update money: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("network %s: %w", networkID, ErrNotFound)
	}
	return nil
}

// CreateStation creates a station and debits its cost from the network
func (s *SQLStore) CreateStation(ctx context.Context, req models.CreateStationRequest) (*models.Station, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	// Start transaction
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	// Check and lock the balance
	var money float64
	err = tx.QueryRowContext(ctx, s.forUpdate(`
		SELECT money
		FROM networks
		WHERE id = $1 AND user_id = $2`), req.NetworkID, s.userID).Scan(&money)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("network %s: %w", req.NetworkID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check balance: %w", err)
	}

	if money < req.Cost {
		return nil, fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientFunds, req.Cost, money)
	}

	st := models.Station{
		ID:        id,
		NetworkID: req.NetworkID,
		Name:      req.Name,
		X:         req.X,
		Y:         req.Y,
		Type:      defaultString(req.Type, models.DefaultLineType),
		Cost:      req.Cost,
		Revenue:   models.DefaultStationRevenue,
		CreatedAt: s.now(),
	}
	// seq keeps creation order on reload; the network row lock above
	// serializes it.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO stations (id, network_id, name, x, y, type, cost, revenue, seq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM stations WHERE network_id = $2), $9)
	`, st.ID, st.NetworkID, st.Name, st.X, st.Y, st.Type, st.Cost, st.Revenue, st.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE networks SET money = money - $1 WHERE id = $2`, req.Cost, req.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to debit network: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("station created", "station", st.ID, "network", st.NetworkID, "cost", st.Cost)
	return &st, nil
}

// DeleteStation deletes a station that no line references
func (s *SQLStore) DeleteStation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var found string
	err = tx.QueryRowContext(ctx, `
		SELECT s.id
		FROM stations s
		JOIN networks n ON n.id = s.network_id
		WHERE s.id = $1 AND n.user_id = $2
	`, id, s.userID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("station %s: %w", id, ErrNotFound)
		}
		return err
	}

	var refs int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM line_stations WHERE station_id = $1`, id).Scan(&refs); err != nil {
		return fmt.Errorf("failed to check line references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("station %s: %w", id, ErrStationInUse)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete station: %w", err)
	}
	return tx.Commit()
}

// CreateLine creates an empty line; stations are appended with AddStationToLine
func (s *SQLStore) CreateLine(ctx context.Context, req models.CreateLineRequest) (*models.Line, error) {
	id, err := resolveID(req.ID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, s.forUpdate(`
		SELECT user_id FROM networks WHERE id = $1 AND user_id = $2`), req.NetworkID, s.userID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("network %s: %w", req.NetworkID, ErrNotFound)
		}
		return nil, err
	}

	l := models.Line{
		ID:        id,
		NetworkID: req.NetworkID,
		Name:      req.Name,
		Color:     defaultString(req.Color, "#FF0000"),
		Type:      defaultString(req.Type, models.DefaultLineType),
		Stations:  []models.LineStop{},
		CreatedAt: s.now(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO lines (id, network_id, name, color, type, seq, created_at)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM lines WHERE network_id = $2), $6)
	`, l.ID, l.NetworkID, l.Name, l.Color, l.Type, l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &l, nil
}

// AddStationToLine appends a station of the same network to the line
func (s *SQLStore) AddStationToLine(ctx context.Context, lineID, stationID string) (*models.LineStop, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var networkID string
	err = tx.QueryRowContext(ctx, s.forUpdate(`
		SELECT l.network_id
		FROM lines l
		JOIN networks n ON n.id = l.network_id
		WHERE l.id = $1 AND n.user_id = $2`), lineID, s.userID).Scan(&networkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("line %s: %w", lineID, ErrNotFound)
		}
		return nil, err
	}

	var st models.Station
	err = tx.QueryRowContext(ctx, `
		SELECT id, network_id, name, x, y, type, cost, revenue, created_at
		FROM stations
		WHERE id = $1 AND network_id = $2
	`, stationID, networkID).Scan(&st.ID, &st.NetworkID, &st.Name, &st.X, &st.Y, &st.Type, &st.Cost, &st.Revenue, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("station %s: %w", stationID, ErrNotFound)
		}
		return nil, err
	}

	var order int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM line_stations WHERE line_id = $1`, lineID).Scan(&order); err != nil {
		return nil, fmt.Errorf("failed to count line stations: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO line_stations (line_id, station_id, stop_order)
		VALUES ($1, $2, $3)
	`, lineID, stationID, order)
	if err != nil {
		return nil, fmt.Errorf("failed to add station to line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &models.LineStop{StationID: stationID, Order: order, Station: &st}, nil
}

// DeleteLine deletes a line and its stops; stations are kept
func (s *SQLStore) DeleteLine(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var found string
	err = tx.QueryRowContext(ctx, `
		SELECT l.id
		FROM lines l
		JOIN networks n ON n.id = l.network_id
		WHERE l.id = $1 AND n.user_id = $2
	`, id, s.userID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("line %s: %w", id, ErrNotFound)
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_stations WHERE line_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete line stations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete line: %w", err)
	}
	return tx.Commit()
}

// Close closes the database when called on the owning store.
func (s *SQLStore) Close() error {
	if !s.owner {
		return nil
	}
	return s.db.Close()
}
