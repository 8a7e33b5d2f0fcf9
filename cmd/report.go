package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"premises-access-control/internal/person"
	"premises-access-control/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Weekly access reports",
	Long:  `Generate the weekly access report for the trailing seven days, or send it to the configured recipients.`,
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current weekly report",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		weekly, err := newAggregator().Aggregate(ctx, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Report period: %s to %s\n\n",
			weekly.Period.Start.Format(time.RFC3339),
			weekly.Period.End.Format(time.RFC3339))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "GROUP\tENTRIES\tEXITS")
		fmt.Fprintln(w, "-----\t-------\t-----")
		fmt.Fprintf(w, "all\t%d\t%d\n", weekly.Totals.Entries, weekly.Totals.Exits)
		fmt.Fprintf(w, "employees\t%d\t%d\n",
			weekly.ByPersonType[person.KindEmployee].Entries,
			weekly.ByPersonType[person.KindEmployee].Exits)
		fmt.Fprintf(w, "visitors\t%d\t%d\n",
			weekly.ByPersonType[person.KindVisitor].Entries,
			weekly.ByPersonType[person.KindVisitor].Exits)
		w.Flush()

		if len(weekly.DailyStats) == 0 {
			return
		}

		days := make([]string, 0, len(weekly.DailyStats))
		for day := range weekly.DailyStats {
			days = append(days, day)
		}
		sort.Strings(days)

		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DAY\tENTRIES\tEXITS")
		for _, day := range days {
			stats := weekly.DailyStats[day]
			fmt.Fprintf(w, "%s\t%d\t%d\n", day, stats.Entries, stats.Exits)
		}
		w.Flush()
	},
}

var reportSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the weekly report to the configured recipients",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		recipients, err := report.LoadRecipients(cfg.Report.RecipientsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading recipients: %v\n", err)
			os.Exit(1)
		}
		if len(recipients) == 0 {
			fmt.Fprintln(os.Stderr, "No report recipients configured")
			os.Exit(1)
		}

		weekly, err := newAggregator().Aggregate(ctx, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
			os.Exit(1)
		}

		sink := report.NewEmailSink(&cfg.Email)
		if err := sink.Deliver(ctx, weekly, recipients); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending report: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Report sent to %d recipient(s)\n", len(recipients))
	},
}

func newAggregator() *report.Aggregator {
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return report.NewAggregator(provider, loc)
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportSendCmd)
}
