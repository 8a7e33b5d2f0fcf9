package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"premises-access-control/internal/access"
)

var (
	logsWorkday string
	logsLimit   int
	logsOffset  int
	logsCSV     bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List recorded access events",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if logsWorkday != "" {
			if _, err := time.Parse(access.WorkdayLayout, logsWorkday); err != nil {
				fmt.Fprintln(os.Stderr, "Invalid workday date, expected YYYY-MM-DD")
				os.Exit(1)
			}
		}

		events, err := provider.ListAccessEvents(ctx, logsWorkday, logsLimit, logsOffset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing access events: %v\n", err)
			os.Exit(1)
		}

		if logsCSV {
			if err := access.WriteCSV(os.Stdout, events); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if len(events) == 0 {
			fmt.Println("No access events found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPERSON\tTYPE\tTIME\tWORKDAY")
		for _, event := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				event.ID, event.Person, event.Type,
				event.Time.Format(time.RFC3339), event.WorkdayDate)
		}
		w.Flush()

		fmt.Printf("\nTotal events: %d\n", len(events))
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsWorkday, "workday", "", "filter by workday date (YYYY-MM-DD)")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 100, "maximum number of events to list")
	logsCmd.Flags().IntVar(&logsOffset, "offset", 0, "number of events to skip")
	logsCmd.Flags().BoolVar(&logsCSV, "csv", false, "write events as CSV to stdout")

	rootCmd.AddCommand(logsCmd)
}
