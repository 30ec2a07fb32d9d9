// Package game composes the simulation core into player sessions.
//
// A Session owns one network's graph, its trains and its tool state. Every
// method takes the session lock, so the core always runs on one logical
// thread. Edits are applied locally first; the matching store calls are
// queued on an outbox and their failures come back as notifications.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"transport-net/economy"
	"transport-net/interaction"
	"transport-net/models"
	"transport-net/motion"
	"transport-net/network"
	"transport-net/simulation"
	"transport-net/store"
)

// Options configures new sessions.
type Options struct {
	// Seed drives line color choices. Zero picks a time-based seed.
	Seed uint64

	Simulation  simulation.Config
	TrainSpeed  float64
	SaveTimeout time.Duration

	// FrameInterval, when positive, makes the manager run each session's
	// frame loop in the background.
	FrameInterval time.Duration

	Logger *slog.Logger
	Clock  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Simulation == (simulation.Config{}) {
		o.Simulation = simulation.DefaultConfig()
	}
	if o.TrainSpeed <= 0 {
		o.TrainSpeed = models.DefaultTrainSpeed
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Session is one player's running simulation.
type Session struct {
	mu        sync.Mutex
	closeOnce sync.Once

	id     string
	userID string
	guest  bool

	graph    *network.Graph
	engine   *economy.Engine
	trains   *motion.Model
	driver   *simulation.Driver
	resolver *interaction.Resolver
	store    store.NetworkStore
	outbox   *store.Outbox

	quote   economy.Quote
	notices []models.Notification
	logger  *slog.Logger
	now     func() time.Time
}

// NewSession loads a network from st and starts a session on it. With an
// empty networkID the user's first network is used, and one is created when
// the user has none.
func NewSession(ctx context.Context, id, userID string, st store.NetworkStore, networkID string, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	net, err := loadNetwork(ctx, st, networkID)
	if err != nil {
		return nil, err
	}

	engine := economy.NewEngine(opts.Seed)
	graph, err := network.New(*net, engine, network.WithIDs(st.NewID), network.WithClock(opts.Clock))
	if err != nil {
		return nil, fmt.Errorf("invalid network %s: %w", net.ID, err)
	}

	logger := opts.Logger.With("session", id, "network", net.ID)
	s := &Session{
		id:     id,
		userID: userID,
		guest:  net.IsGuest(),
		graph:  graph,
		engine: engine,
		trains: motion.NewModel(opts.TrainSpeed),
		store:  st,
		outbox: store.NewOutbox(context.WithoutCancel(ctx), store.DefaultOutboxSize, opts.SaveTimeout, logger),
		logger: logger,
		now:    opts.Clock,
	}
	s.driver = simulation.NewDriver(graph, s.trains, engine, s, opts.Simulation, logger)
	s.resolver = interaction.NewResolver(graph, commands{s})
	s.refresh(true)

	logger.Info("session started",
		"guest", s.guest, "stations", graph.StationCount(), "lines", graph.LineCount(), "money", graph.Money())
	return s, nil
}

func loadNetwork(ctx context.Context, st store.NetworkStore, networkID string) (*models.Network, error) {
	if networkID != "" {
		net, err := st.GetNetwork(ctx, networkID)
		if err != nil {
			return nil, fmt.Errorf("failed to load network: %w", err)
		}
		return net, nil
	}

	networks, err := st.GetNetworks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load networks: %w", err)
	}
	if len(networks) > 0 {
		return &networks[0], nil
	}

	net, err := st.CreateNetwork(ctx, models.CreateNetworkRequest{ID: st.NewID()})
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	return net, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the user that started the session.
func (s *Session) UserID() string { return s.userID }

// PlaceStation builds a station at p for the current station price.
func (s *Session) PlaceStation(p models.Point) (models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeStation(p)
}

// ConnectStations builds a line from a to b for the current line price.
func (s *Session) ConnectStations(a, b string) (models.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectStations(a, b)
}

// DeleteStation demolishes an unconnected station and returns the refund.
func (s *Session) DeleteStation(id string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteStation(id)
}

// DeleteLine removes a line and returns the refund.
func (s *Session) DeleteLine(id string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLine(id)
}

// SelectTool switches the active tool.
func (s *Session) SelectTool(tool interaction.Tool) interaction.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.resolver.SelectTool(tool)
	s.noteOutcome(out)
	return out
}

// Cancel drops the active tool.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.Cancel()
}

// Click resolves a pointer click with the active tool.
func (s *Session) Click(p models.Point) interaction.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.resolver.Click(p)
	s.noteOutcome(out)
	return out
}

// Frame advances the simulation by dt.
func (s *Session) Frame(dt time.Duration) simulation.FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectFailures()
	return s.driver.Frame(dt)
}

// Snapshot returns the render state and drains pending notifications.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectFailures()
	snap := models.Snapshot{
		SessionID:        s.id,
		NetworkID:        s.graph.ID(),
		Guest:            s.guest,
		Money:            s.graph.Money(),
		RevenuePerSecond: s.quote.RevenuePerSecond,
		StationCount:     s.graph.StationCount(),
		LineCount:        s.graph.LineCount(),
		NextStationCost:  s.quote.NextStationCost,
		NextLineCost:     s.quote.NextLineCost,
		Tool:             string(s.resolver.Tool()),
		SelectedStation:  s.resolver.Selected(),
		Stations:         s.graph.Stations(),
		Lines:            s.graph.Lines(),
		Trains:           s.trains.Trains(),
		Notifications:    s.notices,
	}
	s.notices = nil
	return snap
}

// Network returns a copy of the session's network.
func (s *Session) Network() models.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Network()
}

// SaveMoney queues a balance update. It implements simulation.MoneySaver and
// is called by the driver with the session lock held.
func (s *Session) SaveMoney(money float64) {
	networkID := s.graph.ID()
	s.outbox.Enqueue("update-money", func(ctx context.Context) error {
		return s.store.UpdateNetworkMoney(ctx, networkID, money)
	})
}

// Flush waits for queued store calls to finish.
func (s *Session) Flush(ctx context.Context) error {
	return s.outbox.Flush(ctx)
}

// Run drives Frame from a ticker until ctx ends, passing the measured
// elapsed time of each tick.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			s.Frame(now.Sub(last))
			last = now
		}
	}
}

// Close saves the balance, flushes queued store calls and stops the outbox
// worker.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		money := s.graph.Money()
		s.SaveMoney(money)
		s.mu.Unlock()

		s.outbox.Close()
		s.logger.Info("session closed", "money", money)
	})
}

func (s *Session) placeStation(p models.Point) (models.Station, error) {
	cost := economy.StationCost(s.graph.StationCount())
	before := s.graph.Money()
	st, err := s.graph.AddStation(p, cost)
	if err != nil {
		return models.Station{}, err
	}
	s.refresh(false)

	req := models.CreateStationRequest{
		ID:        st.ID,
		NetworkID: st.NetworkID,
		Name:      st.Name,
		X:         st.X,
		Y:         st.Y,
		Type:      st.Type,
		Cost:      st.Cost,
	}
	// The store debits the station itself, so it is first brought up to
	// the balance the purchase was checked against.
	s.outbox.Enqueue("create-station", func(ctx context.Context) error {
		if err := s.store.UpdateNetworkMoney(ctx, req.NetworkID, before); err != nil {
			return err
		}
		_, err := s.store.CreateStation(ctx, req)
		return err
	})
	return st, nil
}

func (s *Session) connectStations(a, b string) (models.Line, error) {
	cost := economy.LineCost(s.graph.LineCount())
	line, err := s.graph.AddLine(a, b, cost)
	if err != nil {
		return models.Line{}, err
	}
	s.refresh(true)

	req := models.CreateLineRequest{
		ID:        line.ID,
		NetworkID: line.NetworkID,
		Name:      line.Name,
		Color:     line.Color,
		Type:      line.Type,
	}
	stops := line.StationIDs()
	money := s.graph.Money()
	s.outbox.Enqueue("create-line", func(ctx context.Context) error {
		if _, err := s.store.CreateLine(ctx, req); err != nil {
			return err
		}
		for _, stationID := range stops {
			if _, err := s.store.AddStationToLine(ctx, req.ID, stationID); err != nil {
				return err
			}
		}
		return s.store.UpdateNetworkMoney(ctx, req.NetworkID, money)
	})
	return line, nil
}

func (s *Session) deleteStation(id string) (float64, error) {
	refund, err := s.graph.DeleteStation(id)
	if err != nil {
		return 0, err
	}
	s.refresh(false)

	networkID, money := s.graph.ID(), s.graph.Money()
	s.outbox.Enqueue("delete-station", func(ctx context.Context) error {
		if err := s.store.DeleteStation(ctx, id); err != nil {
			return err
		}
		return s.store.UpdateNetworkMoney(ctx, networkID, money)
	})
	return refund, nil
}

func (s *Session) deleteLine(id string) (float64, error) {
	refund, err := s.graph.DeleteLine(id)
	if err != nil {
		return 0, err
	}
	s.refresh(true)

	networkID, money := s.graph.ID(), s.graph.Money()
	s.outbox.Enqueue("delete-line", func(ctx context.Context) error {
		if err := s.store.DeleteLine(ctx, id); err != nil {
			return err
		}
		return s.store.UpdateNetworkMoney(ctx, networkID, money)
	})
	return refund, nil
}

// refresh recomputes the displayed figures and, when the set of lines
// changed, replaces every train.
func (s *Session) refresh(linesChanged bool) {
	s.quote = s.engine.Quote(s.graph)
	if linesChanged {
		s.trains.Rebuild(s.graph.Lines())
	}
}

func (s *Session) noteOutcome(out interaction.Outcome) {
	if out.Notice != "" {
		s.notify(out.Level, out.Notice)
	}
}

func (s *Session) notify(level, msg string) {
	s.notices = append(s.notices, models.Notification{Level: level, Message: msg, Time: s.now()})
}

func (s *Session) collectFailures() {
	for _, f := range s.outbox.Failures() {
		s.notify(models.NoticeError, "Could not save: "+f.Op)
	}
}

// commands gives the resolver access to the unlocked edit methods; the
// resolver only runs while the session lock is held.
type commands struct{ s *Session }

func (c commands) PlaceStation(p models.Point) (models.Station, error) {
	return c.s.placeStation(p)
}

func (c commands) ConnectStations(a, b string) (models.Line, error) {
	return c.s.connectStations(a, b)
}

func (c commands) DeleteStation(id string) (float64, error) {
	return c.s.deleteStation(id)
}

func (c commands) DeleteLine(id string) (float64, error) {
	return c.s.deleteLine(id)
}
