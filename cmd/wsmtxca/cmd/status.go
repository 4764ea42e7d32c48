package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the service status",
	Long: `Run the unauthenticated health check of the service and show the state of
its application, database and authentication servers.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var formatDateCmd = &cobra.Command{
	Use:   "format-date <YYYYMMDD>",
	Short: "Convert a service date to YYYY-MM-DD",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := wsmtxca.FormatDate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(date)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, formatDateCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	status, err := billing.GetServerStatus(cmd.Context())
	if err != nil {
		return err
	}

	return output(status, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "AppServer: %s\nDbServer: %s\nAuthServer: %s\n",
			status.AppServer, status.DbServer, status.AuthServer)
		return err
	})
}
