package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/gridlife/config"
	"github.com/nstehr/gridlife/trace"
)

var replayCmd = &cobra.Command{
	Use:   "replay <trace>",
	Short: "Summarize a trace written by 'gridlife run --trace'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := trace.Open(args[0])
		if err != nil {
			return err
		}
		defer tr.Close()

		sum, err := trace.Summarize(tr)
		if err != nil {
			return err
		}

		fmt.Printf("Trace %s (protocol v%d, %dms ticks, limit %d agents)\n",
			args[0], tr.Hello.Version, tr.Hello.TickIntervalMs, tr.Hello.MaxAgents)
		if sum.Ticks == 0 {
			fmt.Println("  no ticks recorded")
			return nil
		}
		fmt.Printf("  Ticks:          %d-%d (%s)\n", sum.FirstTick, sum.LastTick, humanize.Comma(int64(sum.Ticks)))
		fmt.Printf("  Agents:         %s final, %s peak\n", humanize.Comma(int64(sum.FinalAgents)), humanize.Comma(int64(sum.PeakAgents)))
		fmt.Printf("  Painted cells:  %s\n", humanize.Comma(int64(sum.FinalPainted)))
		fmt.Printf("  Rules fired:    %s (%s idle agent-ticks)\n", humanize.Comma(int64(sum.Fired)), humanize.Comma(int64(sum.Idle)))
		fmt.Printf("  Spawned:        %s (%s dropped)\n", humanize.Comma(int64(sum.Spawned)), humanize.Comma(int64(sum.SpawnsDropped)))
		fmt.Printf("  Step time:      %s total, %s/tick\n",
			sum.StepTime.Round(time.Microsecond), (sum.StepTime / time.Duration(sum.Ticks)).Round(time.Microsecond))

		kinds := make([]string, 0, len(sum.Events))
		for k := range sum.Events {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  Event %-18s %s\n", k+":", humanize.Comma(int64(sum.Events[k])))
		}
		return nil
	},
}

var flagShowDefault bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagShowDefault {
			fmt.Print(string(config.DefaultYAML()))
			return nil
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagShowDefault, "default", false, "Print the embedded default file instead")
}
