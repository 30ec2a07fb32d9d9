package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"transport-net/models"
	"transport-net/store"
)

// runStoreSuite exercises the behavior every persisted NetworkStore shares.
func runStoreSuite(t *testing.T, forUser func(userID string) store.NetworkStore) {
	ctx := context.Background()
	alice := forUser("alice")
	bob := forUser("bob")

	net, err := alice.CreateNetwork(ctx, models.CreateNetworkRequest{Name: "Home"})
	if err != nil {
		t.Fatalf("CreateNetwork() error = %v", err)
	}
	if net.Money != models.StartingMoney || net.UserID != "alice" {
		t.Fatalf("network = money %v, user %q", net.Money, net.UserID)
	}

	newStation := func(name string, x float64, cost float64) models.Station {
		t.Helper()
		st, err := alice.CreateStation(ctx, models.CreateStationRequest{
			ID: uuid.NewString(), NetworkID: net.ID, Name: name, X: x, Y: 10, Cost: cost,
		})
		if err != nil {
			t.Fatalf("CreateStation(%s) error = %v", name, err)
		}
		return *st
	}
	money := func(s store.NetworkStore) float64 {
		t.Helper()
		n, err := s.GetNetwork(ctx, net.ID)
		if err != nil {
			t.Fatalf("GetNetwork() error = %v", err)
		}
		return n.Money
	}

	t.Run("networks are scoped to their user", func(t *testing.T) {
		nets, err := bob.GetNetworks(ctx)
		if err != nil {
			t.Fatalf("GetNetworks(bob) error = %v", err)
		}
		if len(nets) != 0 {
			t.Errorf("bob sees %d networks", len(nets))
		}
		if _, err := bob.GetNetwork(ctx, net.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("GetNetwork(bob) error = %v, want ErrNotFound", err)
		}
		if err := bob.UpdateNetworkMoney(ctx, net.ID, 1); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("UpdateNetworkMoney(bob) error = %v, want ErrNotFound", err)
		}
	})

	a := newStation("A", 0, 1000)
	b := newStation("B", 100, 1100)
	c := newStation("C", 200, 1210)

	t.Run("stations keep client ids and debit money", func(t *testing.T) {
		if got := money(alice); got != 10000-1000-1100-1210 {
			t.Errorf("money = %v, want %v", got, 10000-1000-1100-1210)
		}
		n, _ := alice.GetNetwork(ctx, net.ID)
		if len(n.Stations) != 3 || n.Stations[0].ID != a.ID {
			t.Errorf("stations = %+v", n.Stations)
		}
	})

	t.Run("funds check leaves money unchanged", func(t *testing.T) {
		before := money(alice)
		_, err := alice.CreateStation(ctx, models.CreateStationRequest{
			NetworkID: net.ID, Name: "Palace", Cost: 1e9,
		})
		if !errors.Is(err, store.ErrInsufficientFunds) {
			t.Fatalf("error = %v, want ErrInsufficientFunds", err)
		}
		if got := money(alice); got != before {
			t.Errorf("money = %v, want %v", got, before)
		}
	})

	t.Run("invalid client id", func(t *testing.T) {
		_, err := alice.CreateStation(ctx, models.CreateStationRequest{
			ID: "local-1-1", NetworkID: net.ID, Name: "X",
		})
		if !errors.Is(err, store.ErrInvalidID) {
			t.Errorf("error = %v, want ErrInvalidID", err)
		}
	})

	line, err := alice.CreateLine(ctx, models.CreateLineRequest{
		ID: uuid.NewString(), NetworkID: net.ID, Name: "Line 1", Color: "#00FF00",
	})
	if err != nil {
		t.Fatalf("CreateLine() error = %v", err)
	}

	t.Run("stops are appended in order", func(t *testing.T) {
		for i, id := range []string{a.ID, c.ID, b.ID} {
			stop, err := alice.AddStationToLine(ctx, line.ID, id)
			if err != nil {
				t.Fatalf("AddStationToLine() error = %v", err)
			}
			if stop.Order != i {
				t.Errorf("order = %d, want %d", stop.Order, i)
			}
		}

		n, err := alice.GetNetwork(ctx, net.ID)
		if err != nil {
			t.Fatalf("GetNetwork() error = %v", err)
		}
		if len(n.Lines) != 1 {
			t.Fatalf("lines = %d, want 1", len(n.Lines))
		}
		got := n.Lines[0].StationIDs()
		want := []string{a.ID, c.ID, b.ID}
		for i := range want {
			if i >= len(got) || got[i] != want[i] {
				t.Fatalf("stops = %v, want %v", got, want)
			}
		}
		if n.Lines[0].Color != "#00FF00" {
			t.Errorf("color = %q", n.Lines[0].Color)
		}
	})

	t.Run("stops must belong to the network", func(t *testing.T) {
		if _, err := alice.AddStationToLine(ctx, line.ID, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("unknown station error = %v, want ErrNotFound", err)
		}
		if _, err := bob.AddStationToLine(ctx, line.ID, a.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("bob's append error = %v, want ErrNotFound", err)
		}
	})

	t.Run("stations in use cannot be deleted", func(t *testing.T) {
		if err := alice.DeleteStation(ctx, a.ID); !errors.Is(err, store.ErrStationInUse) {
			t.Fatalf("error = %v, want ErrStationInUse", err)
		}
		if err := bob.DeleteLine(ctx, line.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("bob's DeleteLine error = %v, want ErrNotFound", err)
		}
		if err := alice.DeleteLine(ctx, line.ID); err != nil {
			t.Fatalf("DeleteLine() error = %v", err)
		}
		if err := alice.DeleteStation(ctx, a.ID); err != nil {
			t.Fatalf("DeleteStation() error = %v", err)
		}
		if err := alice.DeleteStation(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("second delete error = %v, want ErrNotFound", err)
		}

		n, _ := alice.GetNetwork(ctx, net.ID)
		if len(n.Stations) != 2 || len(n.Lines) != 0 {
			t.Errorf("after deletes: %d stations, %d lines", len(n.Stations), len(n.Lines))
		}
	})

	t.Run("money overwrite", func(t *testing.T) {
		if err := alice.UpdateNetworkMoney(ctx, net.ID, 1234.5); err != nil {
			t.Fatalf("UpdateNetworkMoney() error = %v", err)
		}
		if got := money(alice); got != 1234.5 {
			t.Errorf("money = %v, want 1234.5", got)
		}
		if err := alice.UpdateNetworkMoney(ctx, uuid.NewString(), 1); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("unknown network error = %v, want ErrNotFound", err)
		}
	})
}
