package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		bizModel, _ := cmd.Flags().GetString("model")
		minScore, _ := cmd.Flags().GetInt("min-score")
		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		filter := store.LeadFilter{
			BusinessModel: model.BusinessModel(bizModel),
			MinScore:      minScore,
			Source:        source,
			Limit:         limit,
		}
		if changed := cmd.Flags().Changed("contact-found"); changed {
			contactFound, _ := cmd.Flags().GetBool("contact-found")
			filter.ContactFound = &contactFound
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(leads)
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DOMAIN\tCOMPANY\tMODEL\tSCORE\tCONTACT\tNEXT ACTION")
		for _, l := range leads {
			contact := "-"
			if l.ContactFound {
				contact = strings.Join(l.Emails, ",")
				if contact == "" {
					contact = strings.Join(l.Phones, ",")
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
				l.CanonicalDomain, l.CompanyName, l.BusinessModel,
				l.OutsourcingScore, contact, l.NextAction,
			)
		}
		return tw.Flush()
	},
}

func init() {
	leadsCmd.Flags().String("model", "", "filter by business model (manufacturing, marketing, hybrid)")
	leadsCmd.Flags().Int("min-score", 0, "filter by minimum outsourcing score")
	leadsCmd.Flags().Bool("contact-found", false, "filter by contact availability")
	leadsCmd.Flags().String("source", "", "filter by contributing source")
	leadsCmd.Flags().Int("limit", 50, "max leads to list")
	leadsCmd.Flags().Bool("json", false, "output JSON instead of a table")
	rootCmd.AddCommand(leadsCmd)
}
