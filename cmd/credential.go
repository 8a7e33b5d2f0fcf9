package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"premises-access-control/internal/config"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
	"premises-access-control/internal/storage"
)

var (
	credentialHours uint
	credentialOut   string
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage access credentials",
	Long:  `Issue and inspect scannable access credentials for employees and visitors.`,
}

var credentialIssueCmd = &cobra.Command{
	Use:   "issue [employee|visitor] [id]",
	Short: "Issue a new credential for a person",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		kind, err := person.ParseKind(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid person type: %v\n", err)
			os.Exit(1)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid person id: %v\n", err)
			os.Exit(1)
		}
		owner, err := person.NewRef(kind, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		validity := cfg.CredentialValidity()
		if cmd.Flags().Changed("hours") {
			validity = time.Duration(credentialHours) * time.Hour
		}

		issuer := credential.NewIssuer(provider, storage.Directory(provider))
		cred, err := issuer.Issue(ctx, owner, validity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error issuing credential: %v\n", err)
			os.Exit(1)
		}

		printCredential(cred)

		if credentialOut != "" {
			png, err := qrcode.Encode(cred.Code, qrcode.Medium, config.QR_IMAGE_SIZE)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error generating QR code: %v\n", err)
				os.Exit(1)
			}
			if err := os.WriteFile(credentialOut, png, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing QR code: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("\nQR code written to %s\n", credentialOut)
		}
	},
}

var credentialShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a credential by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid credential id: %v\n", err)
			os.Exit(1)
		}

		cred, err := provider.FindCredentialByID(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printCredential(cred)
	},
}

func printCredential(cred *credential.Credential) {
	expires := "never"
	if cred.ExpiresAt != nil {
		expires = cred.ExpiresAt.Format(time.RFC3339)
	}
	status := "inactive"
	if cred.IsActive {
		status = "active"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\t%d\n", cred.ID)
	fmt.Fprintf(w, "CODE\t%s\n", cred.Code)
	fmt.Fprintf(w, "OWNER\t%s\n", cred.Owner)
	fmt.Fprintf(w, "STATUS\t%s\n", status)
	fmt.Fprintf(w, "CREATED\t%s\n", cred.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "EXPIRES\t%s\n", expires)
	w.Flush()
}

func init() {
	credentialIssueCmd.Flags().UintVar(&credentialHours, "hours", 0, "validity in hours, 0 means never expires")
	credentialIssueCmd.Flags().StringVar(&credentialOut, "out", "", "write the credential QR code PNG to this file")

	rootCmd.AddCommand(credentialCmd)
	credentialCmd.AddCommand(credentialIssueCmd)
	credentialCmd.AddCommand(credentialShowCmd)
}
