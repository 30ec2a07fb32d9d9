package scenario

import (
	"context"
	"fmt"
	"math"
	"time"

	"transport-net/game"
	"transport-net/interaction"
	"transport-net/models"
	"transport-net/store"
)

// StepResult records what one step did.
type StepResult struct {
	Index   int    `json:"index"`
	Action  string `json:"action"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Name       string          `json:"name"`
	Steps      []StepResult    `json:"steps"`
	Snapshot   models.Snapshot `json:"snapshot"`
	Mismatches []string        `json:"mismatches,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Mismatches) == 0 }

// Options configures a run.
type Options struct {
	// Store backs non-guest scenarios. A fresh in-memory store is used when nil.
	Store store.NetworkStore
	Game  game.Options

	// NewNetwork starts non-guest scenarios on a network created for the run
	// instead of the user's first network.
	NewNetwork bool
}

// Run replays sc on a new session. Failed steps are recorded and the run
// continues; the error is reserved for scenarios that cannot start or that
// reference stations or lines they never created.
func Run(ctx context.Context, sc *Scenario, opts Options) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	st := opts.Store
	switch {
	case sc.IsGuest():
		st = store.NewGuestStore()
	case st == nil:
		st = store.NewMemoryStore().ForUser("scenario")
	}
	if sc.Money != nil {
		st = fundedStore{NetworkStore: st, money: *sc.Money}
	}

	gopts := opts.Game
	if sc.Seed != 0 {
		gopts.Seed = sc.Seed
	}
	var networkID string
	if opts.NewNetwork && !sc.IsGuest() {
		net, err := st.CreateNetwork(ctx, models.CreateNetworkRequest{ID: st.NewID(), Name: sc.Name})
		if err != nil {
			return nil, fmt.Errorf("failed to create network: %w", err)
		}
		networkID = net.ID
	}

	sess, err := game.NewSession(ctx, "scenario", "scenario", st, networkID, gopts)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	r := &runner{sess: sess}
	res := &Result{Name: sc.Name}
	for i, step := range sc.Steps {
		sr, err := r.step(step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		sr.Index = i + 1
		sr.Action = step.Action
		res.Steps = append(res.Steps, sr)
	}

	if err := sess.Flush(ctx); err != nil {
		return nil, err
	}
	res.Snapshot = sess.Snapshot()
	res.Mismatches = check(sc.Expect, res.Snapshot)
	return res, nil
}

type runner struct {
	sess     *game.Session
	stations []string
	lines    []string
}

func (r *runner) step(st Step) (StepResult, error) {
	switch st.Action {
	case ActionPlace:
		s, err := r.sess.PlaceStation(models.Pt(st.X, st.Y))
		if err != nil {
			return failed(err), nil
		}
		r.stations = append(r.stations, s.ID)
		return ok(fmt.Sprintf("%s built for %.0f", s.Name, s.Cost)), nil

	case ActionConnect:
		a, err := r.station(*st.From)
		if err != nil {
			return StepResult{}, err
		}
		b, err := r.station(*st.To)
		if err != nil {
			return StepResult{}, err
		}
		l, err := r.sess.ConnectStations(a, b)
		if err != nil {
			return failed(err), nil
		}
		r.lines = append(r.lines, l.ID)
		return ok(l.Name + " built"), nil

	case ActionDeleteStation:
		id, err := r.station(*st.Station)
		if err != nil {
			return StepResult{}, err
		}
		refund, err := r.sess.DeleteStation(id)
		if err != nil {
			return failed(err), nil
		}
		return ok(fmt.Sprintf("refunded %.0f", refund)), nil

	case ActionDeleteLine:
		id, err := r.line(*st.Line)
		if err != nil {
			return StepResult{}, err
		}
		refund, err := r.sess.DeleteLine(id)
		if err != nil {
			return failed(err), nil
		}
		return ok(fmt.Sprintf("refunded %.0f", refund)), nil

	case ActionTool:
		tool, err := interaction.ParseTool(st.Tool)
		if err != nil {
			return StepResult{}, err
		}
		return r.outcome(r.sess.SelectTool(tool)), nil

	case ActionClick:
		return r.outcome(r.sess.Click(models.Pt(st.X, st.Y))), nil

	case ActionRun:
		frames := st.Frames
		if frames == 0 {
			frames = 1
		}
		dtMs := st.DtMs
		if dtMs == 0 {
			dtMs = DefaultFrameMs
		}
		dt := time.Duration(dtMs * float64(time.Millisecond))
		var earned float64
		for i := 0; i < frames; i++ {
			res := r.sess.Frame(dt)
			earned += res.ArrivalRevenue + res.PassiveRevenue
		}
		return ok(fmt.Sprintf("%d frames, earned %.0f", frames, earned)), nil
	}
	return StepResult{}, fmt.Errorf("unknown action %q", st.Action)
}

// outcome records ids created through clicks so later steps can refer to them.
func (r *runner) outcome(out interaction.Outcome) StepResult {
	switch out.Action {
	case interaction.ActionStationPlaced:
		r.stations = append(r.stations, out.StationID)
	case interaction.ActionLineCreated:
		r.lines = append(r.lines, out.LineID)
	}
	if out.Err != nil || out.Level == models.NoticeError {
		return StepResult{OK: false, Message: out.Notice}
	}
	return ok(out.Notice)
}

func (r *runner) station(i int) (string, error) {
	if i < 0 || i >= len(r.stations) {
		return "", fmt.Errorf("station %d was never placed", i)
	}
	return r.stations[i], nil
}

func (r *runner) line(i int) (string, error) {
	if i < 0 || i >= len(r.lines) {
		return "", fmt.Errorf("line %d was never built", i)
	}
	return r.lines[i], nil
}

func ok(msg string) StepResult { return StepResult{OK: true, Message: msg} }

func failed(err error) StepResult { return StepResult{OK: false, Message: err.Error()} }

func check(exp *Expect, snap models.Snapshot) []string {
	if exp == nil {
		return nil
	}
	var out []string
	if exp.Money != nil && !near(*exp.Money, snap.Money) {
		out = append(out, fmt.Sprintf("money: got %.2f, want %.2f", snap.Money, *exp.Money))
	}
	if exp.Stations != nil && *exp.Stations != snap.StationCount {
		out = append(out, fmt.Sprintf("stations: got %d, want %d", snap.StationCount, *exp.Stations))
	}
	if exp.Lines != nil && *exp.Lines != snap.LineCount {
		out = append(out, fmt.Sprintf("lines: got %d, want %d", snap.LineCount, *exp.Lines))
	}
	if exp.Trains != nil && *exp.Trains != len(snap.Trains) {
		out = append(out, fmt.Sprintf("trains: got %d, want %d", len(snap.Trains), *exp.Trains))
	}
	if exp.RevenuePerSecond != nil && !near(*exp.RevenuePerSecond, snap.RevenuePerSecond) {
		out = append(out, fmt.Sprintf("revenuePerSecond: got %.2f, want %.2f", snap.RevenuePerSecond, *exp.RevenuePerSecond))
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// fundedStore starts new networks with a custom balance.
type fundedStore struct {
	store.NetworkStore
	money float64
}

func (s fundedStore) CreateNetwork(ctx context.Context, req models.CreateNetworkRequest) (*models.Network, error) {
	n, err := s.NetworkStore.CreateNetwork(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.NetworkStore.UpdateNetworkMoney(ctx, n.ID, s.money); err != nil {
		return nil, err
	}
	n.Money = s.money
	return n, nil
}
