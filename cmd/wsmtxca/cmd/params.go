package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

var paramsCmd = &cobra.Command{
	Use:   "params [table]",
	Short: "Query a reference table",
	Long: `Query one of the reference tables of the service. Without a table name
the available tables are listed.

Tables:
  ` + strings.Join(wsmtxca.Tables(), "\n  ") + `

Examples:
  wsmtxca params voucher-types
  wsmtxca params units-of-measure -f table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}

func runParams(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, name := range wsmtxca.Tables() {
			fmt.Println(name)
		}
		return nil
	}

	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := billing.Catalog(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return output(entries, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDESCRIPTION\tFROM\tTO")
		fmt.Fprintln(tw, "--\t-----------\t----\t--")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Description, e.ValidFrom, e.ValidTo)
		}
		return tw.Flush()
	})
}
