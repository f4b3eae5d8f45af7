package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nstehr/gridlife/rules"
	"github.com/nstehr/gridlife/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse a rule list and report dropped rules",
	Long: `Parse a rule list the way the simulation would. Invalid rules are listed
with the reason they were dropped. The command fails only when the file is
not a JSON array at all.

Examples:
  gridlife validate ./mine.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read rules: %w", err)
		}
		_, report := rules.ParseWithReport(string(data), nil)
		printReport(args[0], report)
		return report.Invalid
	},
}

func printReport(name string, report rules.ParseReport) {
	if report.Invalid != nil {
		fmt.Printf("%s: not a rule list\n", name)
		return
	}
	fmt.Printf("%s: %d rule(s) kept, %d dropped\n", name, report.Kept, len(report.Dropped))
	for _, d := range report.Dropped {
		fmt.Printf("  rule %d: %s\n", d.Index, d.Reason)
	}
}

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "List built-in rule lists or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			text, ok := rules.Preset(args[0])
			if !ok {
				return fmt.Errorf("unknown preset %q", args[0])
			}
			fmt.Println(strings.TrimSpace(text))
			return nil
		}

		fmt.Println("Built-in presets:")
		fmt.Println()
		for _, name := range rules.Presets() {
			text, _ := rules.Preset(name)
			marker := ""
			if name == cfg.DefaultPreset {
				marker = " (default)"
			}
			fmt.Printf("  %-14s %-22s %d rules%s\n", name, rules.PresetTitle(name), rules.Parse(text, nil).Len(), marker)
		}
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage named rule lists in the rulebook",
	Long: `The rulebook is a SQLite database of named rule lists, stored as their
JSON text. Use --db or db_path in the config to choose its location.

Examples:
  gridlife rules save walker ./walker.json
  gridlife rules list
  gridlife rules show walker
  gridlife rules delete walker`,
}

func init() {
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "save <name> <file>",
		Short: "Store a rule list under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read rules: %w", err)
			}
			_, report := rules.ParseWithReport(string(data), nil)
			if report.Invalid != nil {
				return report.Invalid
			}
			return withRulebook(func(rb *store.Rulebook) error {
				if err := rb.Save(args[0], string(data), report.Kept, len(report.Dropped)); err != nil {
					return err
				}
				printReport(args[0], report)
				return nil
			})
		},
	})
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a stored rule list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRulebook(func(rb *store.Rulebook) error {
				e, err := rb.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Println(strings.TrimSpace(e.Rules))
				return nil
			})
		},
	})
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored rule lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRulebook(func(rb *store.Rulebook) error {
				entries, err := rb.List()
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Println("Rulebook is empty.")
					return nil
				}
				fmt.Printf("  %-20s  %-5s  %-7s  %s\n", "Name", "Rules", "Dropped", "Updated")
				fmt.Printf("  %-20s  %-5s  %-7s  %s\n", "----", "-----", "-------", "-------")
				for _, e := range entries {
					fmt.Printf("  %-20s  %-5d  %-7d  %s\n", e.Name, e.Kept, e.Dropped, humanize.Time(e.UpdatedAt))
				}
				return nil
			})
		},
	})
	rulesCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored rule list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRulebook(func(rb *store.Rulebook) error {
				if err := rb.Delete(args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted %s\n", args[0])
				return nil
			})
		},
	})
}

func withRulebook(fn func(rb *store.Rulebook) error) error {
	rb, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer rb.Close()
	return fn(rb)
}
