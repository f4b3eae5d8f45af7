package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nstehr/gridlife/ipc"
	"github.com/nstehr/gridlife/rules"
	"github.com/nstehr/gridlife/sim"
	"github.com/nstehr/gridlife/trace"
)

var (
	flagTicks    int
	flagRealtime bool
	flagTrace    string
	flagAt       []string
	runRules     ruleSource
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and print a summary",
	Long: `Run a simulation for a fixed number of ticks.

Agents come from --at positions (all sharing the rule list picked by
--preset, --rules or --rulebook), or from the agents in the config file.
By default ticks run back to back; --realtime paces them at the
configured tick interval.

Examples:
  gridlife run --preset langton --ticks 11000
  gridlife run --rules ./mine.json --at 0,0 --at 5,5
  gridlife run --rulebook mine --trace run.zst --realtime`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", 100, "Number of ticks to run")
	runCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Pace ticks at the configured interval")
	runCmd.Flags().StringVar(&flagTrace, "trace", "", "Write a zstd tick trace to this file")
	runCmd.Flags().StringArrayVar(&flagAt, "at", nil, "Place an agent at x,y (repeatable)")
	runCmd.Flags().StringVar(&runRules.preset, "preset", "", "Built-in rule list for placed agents")
	runCmd.Flags().StringVar(&runRules.file, "rules", "", "Rule list JSON file for placed agents")
	runCmd.Flags().StringVar(&runRules.rulebook, "rulebook", "", "Rulebook entry for placed agents")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if flagTicks <= 0 {
		return fmt.Errorf("--ticks must be positive")
	}
	fmt.Println(banner)

	s := newSimulation()
	n, err := populate(s, &runRules, flagAt)
	if err != nil {
		return err
	}
	slog.Info("agents placed", "count", n)

	var rec *trace.Recorder
	if flagTrace != "" {
		rec, err = trace.Create(flagTrace, helloMessage())
		if err != nil {
			return err
		}
		defer rec.Close()
		s.Subscribe(func(r sim.TickReport) {
			if err := rec.RecordTick(r, s.Snapshot()); err != nil {
				slog.Error("trace write failed", "error", err)
			}
		})
	}

	start := time.Now()
	if flagRealtime {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := s.Run(ctx, cfg.TickInterval(), flagTicks); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	} else {
		for range flagTicks {
			s.Step()
		}
	}
	elapsed := time.Since(start)

	ws := s.Snapshot()
	fmt.Printf("Ran %s ticks in %s\n", humanize.Comma(int64(ws.Tick)), elapsed.Round(time.Millisecond))
	fmt.Printf("  Agents:         %s\n", humanize.Comma(int64(len(ws.Agents))))
	fmt.Printf("  Cells stored:   %s\n", humanize.Comma(int64(len(ws.Cells))))
	if dropped := s.DroppedSpawns(); dropped > 0 {
		fmt.Printf("  Spawns dropped: %s (limit %d)\n", humanize.Comma(int64(dropped)), cfg.MaxAgents)
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
		if info, err := os.Stat(flagTrace); err == nil {
			fmt.Printf("  Trace:          %s (%s, %d ticks)\n", flagTrace, humanize.Bytes(uint64(info.Size())), rec.Ticks())
		}
	}
	return nil
}

func helloMessage() ipc.HelloMessage {
	return ipc.HelloMessage{
		Version:        ipc.Version,
		TickIntervalMs: cfg.TickIntervalMs,
		MaxAgents:      cfg.MaxAgents,
		Presets:        rules.Presets(),
	}
}
