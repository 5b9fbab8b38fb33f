package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalogdomain "ragreport/internal/catalog/domain"
	"ragreport/internal/config"
)

// NewCriteriaCommand crée la commande criteria (seuils actifs, sans base de données)
func NewCriteriaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "criteria",
		Short: "Show the active thresholds per brand tier and the escalation policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			criteria, err := cfg.Criteria()
			if err != nil {
				return err
			}
			policy, err := cfg.EscalationPolicy()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				return writeJSON(out, map[string]any{
					"criteria": criteria,
					"policy":   policy.Name(),
				})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "TIER\tGREEN >=\tAMBER >=\n")
			for _, tier := range catalogdomain.AllBrandTiers() {
				t, ok := criteria[tier]
				if !ok {
					fmt.Fprintf(tw, "%s\t-\t-\n", tier)
					continue
				}
				fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", tier, t.Green, t.Amber)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\npolicy: %s\n", policy.Name())
			return nil
		},
	}
}
