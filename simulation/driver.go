// Package simulation drives a session forward in time.
//
// A Driver runs three clocks off the frame time supplied by the host loop:
// train motion every frame, passive connectivity revenue once per revenue
// period, and a money save once per save period. Everything happens on the
// caller's goroutine; saving is handed off to a MoneySaver that must not block.
package simulation

import (
	"context"
	"log/slog"
	"time"

	"transport-net/economy"
	"transport-net/logging"
	"transport-net/motion"
)

const (
	DefaultRevenuePeriod = time.Second
	DefaultSavePeriod    = 30 * time.Second
)

// Ledger is the part of the network graph the driver reads and credits.
type Ledger interface {
	economy.Graph
	Money() float64
	Credit(amount float64)
}

// MoneySaver persists the balance without blocking the caller.
type MoneySaver interface {
	SaveMoney(money float64)
}

// Config controls the driver's timers.
type Config struct {
	// PassiveIncome credits connectivity revenue every RevenuePeriod. When
	// false the figure is still shown as revenue/second but never paid out.
	PassiveIncome bool
	RevenuePeriod time.Duration
	SavePeriod    time.Duration
}

// DefaultConfig returns the standard one-second revenue and thirty-second save clocks.
func DefaultConfig() Config {
	return Config{
		PassiveIncome: true,
		RevenuePeriod: DefaultRevenuePeriod,
		SavePeriod:    DefaultSavePeriod,
	}
}

// FrameResult summarizes what one frame did.
type FrameResult struct {
	Arrivals       []motion.Arrival
	ArrivalRevenue float64
	PassiveRevenue float64
	Saves          int
}

// Driver advances trains and accrues revenue for one network.
type Driver struct {
	ledger Ledger
	trains *motion.Model
	engine *economy.Engine
	saver  MoneySaver
	cfg    Config
	logger *slog.Logger

	sinceRevenue time.Duration
	sinceSave    time.Duration
}

// NewDriver wires a driver. saver may be nil when nothing is persisted.
func NewDriver(ledger Ledger, trains *motion.Model, engine *economy.Engine, saver MoneySaver, cfg Config, logger *slog.Logger) *Driver {
	if cfg.RevenuePeriod <= 0 {
		cfg.RevenuePeriod = DefaultRevenuePeriod
	}
	if cfg.SavePeriod <= 0 {
		cfg.SavePeriod = DefaultSavePeriod
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		ledger: ledger,
		trains: trains,
		engine: engine,
		saver:  saver,
		cfg:    cfg,
		logger: logger,
	}
}

// Frame advances the simulation by dt.
func (d *Driver) Frame(dt time.Duration) FrameResult {
	var res FrameResult
	if dt < 0 {
		dt = 0
	}

	res.Arrivals = d.trains.Advance(dt)
	for _, a := range res.Arrivals {
		amount := d.engine.Arrival(d.ledger, len(a.Line.Stations), a.Station.ID)
		d.ledger.Credit(amount)
		res.ArrivalRevenue += amount
		d.logger.Log(context.Background(), logging.LevelTrace, "train arrival",
			"train", a.TrainID, "line", a.Line.ID, "station", a.Station.ID, "revenue", amount)
	}

	d.sinceRevenue += dt
	for d.sinceRevenue >= d.cfg.RevenuePeriod {
		d.sinceRevenue -= d.cfg.RevenuePeriod
		if !d.cfg.PassiveIncome {
			continue
		}
		amount := economy.ConnectivityRevenue(d.ledger)
		if amount > 0 {
			d.ledger.Credit(amount)
			res.PassiveRevenue += amount
		}
	}

	d.sinceSave += dt
	for d.sinceSave >= d.cfg.SavePeriod {
		d.sinceSave -= d.cfg.SavePeriod
		res.Saves++
	}
	if res.Saves > 0 && d.saver != nil {
		d.saver.SaveMoney(d.ledger.Money())
	}

	return res
}
