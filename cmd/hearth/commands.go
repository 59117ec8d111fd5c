package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hearthhq/hearth/internal/config"
	"github.com/hearthhq/hearth/internal/schedule"
	"github.com/hearthhq/hearth/internal/suggest"
)

// --- suggest ---

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Get consumable suggestions for an asset",
	Long: `Get consumable suggestions for an asset.

Examples:
  hearth suggest --name "Kitchen fridge" --category appliance --make LG --model LFXS26973S
  hearth suggest --name "Honda mower" --category "garden tool"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		category, _ := cmd.Flags().GetString("category")
		mk, _ := cmd.Flags().GetString("make")
		model, _ := cmd.Flags().GetString("model")

		if name == "" || category == "" {
			return fmt.Errorf("--name and --category are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		body := map[string]string{
			"name":     name,
			"category": category,
			"make":     mk,
			"model":    model,
		}
		resp, err := client.post(cmd.Context(), "/api/v1/suggestions", body)
		if err != nil {
			return err
		}

		var result suggest.Result
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Suggestions) == 0 {
			fmt.Println("No suggestions found.")
			return nil
		}

		source := "generated"
		if result.FromCache {
			source = "cached"
		}
		printStep("%d suggestions (%s)", len(result.Suggestions), source)
		for _, s := range result.Suggestions {
			fmt.Printf("\n%s — every %s\n", colorize(colorBold, s.Consumable), formatFrequency(s.FrequencyMonths))
			if s.Description != "" {
				fmt.Printf("  %s\n", s.Description)
			}
			for _, p := range s.Products {
				line := "  • " + p.Name
				if p.EstimatedCost != nil {
					line += fmt.Sprintf(" (~$%.2f)", *p.EstimatedCost)
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func formatFrequency(months float64) string {
	if months < 1 {
		return fmt.Sprintf("%.0f days", months*30)
	}
	if months == 1 {
		return "month"
	}
	return fmt.Sprintf("%.0f months", months)
}

func init() {
	suggestCmd.Flags().String("name", "", "asset name")
	suggestCmd.Flags().String("category", "", "asset category")
	suggestCmd.Flags().String("make", "", "asset make")
	suggestCmd.Flags().String("model", "", "asset model")
}

// --- backfill ---

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Trigger a thumbnail backfill pass on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/v1/backfill/thumbnails", nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Backfill %s", result["status"])
		return nil
	},
}

// --- next-date ---

var nextDateCmd = &cobra.Command{
	Use:   "next-date <from> <frequency-months>",
	Short: "Compute the next service date from a date and a frequency in months",
	Long: `Compute the next service date from a date and a frequency in months.

Frequencies below one month are treated as day intervals (frequency × 30,
rounded); whole-month frequencies land on the same day of the target month,
clamped to its last day.

Examples:
  hearth next-date 2024-01-31 1
  hearth next-date 2024-03-01 0.25`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		freq, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid frequency %q: %w", args[1], err)
		}
		if freq <= 0 {
			return fmt.Errorf("frequency must be positive")
		}

		next, err := schedule.NextDateISO(args[0], freq)
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hearth configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys and their current values",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, info := range config.ShowAll(cfg) {
			fmt.Printf("%-24s %-32s (%s)\n", info.Key, info.Value, info.EnvVar)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the current value of a configuration key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		for _, info := range config.ShowAll(cfg) {
			if info.Key == args[0] {
				fmt.Println(info.Value)
				return nil
			}
		}
		return fmt.Errorf("unknown config key: %q (valid: %s)", args[0], strings.Join(config.ValidKeys(), ", "))
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetKey(args[0], args[1]); err != nil {
			if strings.Contains(err.Error(), "unknown config key") {
				printWarning("Valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}
		printSuccess("Set %s = %s", args[0], args[1])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration key so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
