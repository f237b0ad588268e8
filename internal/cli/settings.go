package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rvalenzuelab/voznote/pkg/client"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and update settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsPlanCmd())

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := apiClient.GetSettings(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(s)
			}

			plan := "free"
			if s.IsPro {
				plan = "pro"
			}
			fmt.Printf("Plan:            %s\n", plan)
			if s.SubscriptionEndsAt != nil {
				fmt.Printf("Renews/expires:  %s\n", s.SubscriptionEndsAt.Format("2006-01-02"))
			}
			fmt.Printf("Cloud sync:      %s\n", formatBool(s.CloudSyncEnabled))
			fmt.Printf("Auto cloud sync: %s\n", formatBool(s.AutoCloudSync))
			fmt.Printf("AI credits:      %d\n", s.AICredits)
			return nil
		},
	}
}

func newSettingsPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show subscription and credit state",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := apiClient.GetPlan(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get plan: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(p)
			}

			fmt.Printf("Plan:          %s\n", p.Plan)
			fmt.Printf("Plan selected: %s\n", formatBool(p.PlanSelected))
			if p.SubscriptionEndsAt != nil {
				fmt.Printf("Ends:          %s\n", p.SubscriptionEndsAt.Format("2006-01-02"))
			}
			if p.ProTrialEndsAt != nil {
				fmt.Printf("Trial ends:    %s\n", p.ProTrialEndsAt.Format("2006-01-02"))
			}
			fmt.Printf("Trial used:    %s\n", formatBool(p.ProTrialUsed))
			fmt.Printf("AI credits:    %d\n", p.AICredits)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <true|false>",
		Short: "Set a toggle: cloud-sync, auto-cloud-sync, plan-selected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("value must be true or false")
			}

			var req client.UpdateSettingsRequest
			switch args[0] {
			case "cloud-sync":
				req.CloudSyncEnabled = &value
			case "auto-cloud-sync":
				req.AutoCloudSync = &value
			case "plan-selected":
				req.PlanSelected = &value
			default:
				return fmt.Errorf("unknown setting %q", args[0])
			}

			if _, err := apiClient.UpdateSettings(context.Background(), req); err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}

			fmt.Printf("Set %s = %v\n", args[0], value)
			return nil
		},
	}
}

func newUpgradeCmd() *cobra.Command {
	var yearly bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade to Pro via the payment gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan := "m"
			if yearly {
				plan = "y"
			}

			resp, err := apiClient.CreateCheckout(context.Background(), plan)
			if err != nil {
				return fmt.Errorf("failed to create checkout: %w", err)
			}

			fmt.Println("Open this URL in your browser to complete the payment:")
			fmt.Println(resp.RedirectURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yearly, "yearly", false, "purchase the yearly plan")

	return cmd
}
