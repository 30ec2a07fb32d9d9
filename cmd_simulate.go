package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"transport-net/config"
	"transport-net/logging"
	"transport-net/scenario"
	"transport-net/store"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scenario file and check its expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			cfg := config.Load()
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = cfg.LogLevel
			}
			logger := logging.NewLogger(level, os.Stderr)

			opts := scenario.Options{Game: sessionOptions(cfg, logger)}
			opts.Game.FrameInterval = 0

			apiURL, _ := cmd.Flags().GetString("api-url")
			if apiURL == "" {
				apiURL = cfg.APIURL
			}
			if apiURL != "" {
				user, _ := cmd.Flags().GetString("user")
				persisted := false
				sc.Guest = &persisted
				opts.Store = store.NewRemoteStore(apiURL, user, nil)
				opts.NewNetwork = true
				logger.Info("replaying against API", "url", apiURL, "user", user)
			}

			res, err := scenario.Run(cmd.Context(), sc, opts)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printResult(cmd.OutOrStdout(), res)
			}

			if !res.Passed() {
				return fmt.Errorf("scenario %q: %d expectation(s) failed", res.Name, len(res.Mismatches))
			}
			return nil
		},
	}

	cmd.Flags().String("log-level", "", "Log level (overrides LOG_LEVEL)")
	cmd.Flags().String("api-url", "", "Persist the replay through a running API, e.g. http://localhost:3000/api (overrides API_URL)")
	cmd.Flags().String("user", "scenario", "User id sent to the API")
	return cmd
}

func printResult(w io.Writer, res *scenario.Result) {
	fmt.Fprintf(w, "Scenario: %s\n", res.Name)
	for _, s := range res.Steps {
		mark := "ok"
		if !s.OK {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "  %2d. %-15s %-4s %s\n", s.Index, s.Action, mark, s.Message)
	}

	snap := res.Snapshot
	fmt.Fprintf(w, "\nMoney: %.0f  Revenue/s: %.0f\n", snap.Money, snap.RevenuePerSecond)
	fmt.Fprintf(w, "Stations: %d  Lines: %d  Trains: %d\n", snap.StationCount, snap.LineCount, len(snap.Trains))

	if len(res.Mismatches) > 0 {
		fmt.Fprintln(w, "\nExpectations not met:")
		for _, m := range res.Mismatches {
			fmt.Fprintf(w, "  - %s\n", m)
		}
	}
}
