package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

var (
	salesPoint  int
	voucherType int
	fullOutput  bool
)

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last authorized voucher number",
	Long: `Show the number of the last voucher authorized for a sales point and
voucher type. A sequence with no vouchers yet reports found=false.

Examples:
  wsmtxca last --sales-point 4 --type 6`,
	Args: cobra.NoArgs,
	RunE: runLast,
}

var createCmd = &cobra.Command{
	Use:   "create <voucher.json|->",
	Short: "Authorize a voucher",
	Long: `Request a CAE for the voucher described in a JSON file (or stdin with "-").
The voucher number must be set in the file.

Examples:
  wsmtxca create voucher.json
  wsmtxca create voucher.json --full`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var nextCmd = &cobra.Command{
	Use:   "next <voucher.json|->",
	Short: "Authorize a voucher numbered after the last one",
	Long: `Number the voucher after the last authorized one of its sales point and
type, then request its CAE.

Examples:
  wsmtxca next voucher.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNext,
}

var infoCmd = &cobra.Command{
	Use:   "info <number>",
	Short: "Show an authorized voucher",
	Long: `Show the voucher stored by the service.

Examples:
  wsmtxca info 42 --sales-point 4 --type 6`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	for _, c := range []*cobra.Command{lastCmd, infoCmd} {
		c.Flags().IntVarP(&salesPoint, "sales-point", "p", 1, "Sales point")
		c.Flags().IntVarP(&voucherType, "type", "t", model.VoucherTypeInvoiceB, "Voucher type code")
	}
	createCmd.Flags().BoolVar(&fullOutput, "full", false, "Print the full service response")

	rootCmd.AddCommand(lastCmd, createCmd, nextCmd, infoCmd)
}

func runLast(cmd *cobra.Command, args []string) error {
	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	number, found, err := billing.GetLastVoucher(cmd.Context(), salesPoint, voucherType)
	if err != nil {
		return err
	}

	result := map[string]any{
		"sales_point":    salesPoint,
		"voucher_type":   voucherType,
		"voucher_number": number,
		"found":          found,
	}
	return output(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Sales point %d, type %d: last voucher %d (found=%t)\n", salesPoint, voucherType, number, found)
		return err
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	req, err := readVoucher(args[0])
	if err != nil {
		return err
	}

	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if fullOutput {
		resp, err := billing.CreateVoucherRaw(cmd.Context(), req)
		if err != nil {
			return err
		}
		return outputJSON(os.Stdout, resp)
	}

	result, err := billing.CreateVoucher(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printVoucherResult(req, result)
}

func runNext(cmd *cobra.Command, args []string) error {
	req, err := readVoucher(args[0])
	if err != nil {
		return err
	}

	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := billing.CreateNextVoucher(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printVoucherResult(req, result)
}

func runInfo(cmd *cobra.Command, args []string) error {
	number, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid voucher number %q", args[0])
	}

	billing, _, cleanup, err := newBilling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	info, found, err := billing.GetVoucherInfo(cmd.Context(), number, salesPoint, voucherType)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("voucher %d not found at sales point %d, type %d", number, salesPoint, voucherType)
	}

	return output(info, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Voucher\t%d-%04d-%08d\n", info.VoucherType, info.SalesPoint, info.VoucherNumber)
		fmt.Fprintf(tw, "Issued\t%s\n", info.IssueDate)
		fmt.Fprintf(tw, "Document\t%d %s\n", info.DocumentType, info.DocumentNumber)
		fmt.Fprintf(tw, "Total\t%s %s\n", info.TotalAmount.StringFixed(2), info.Currency)
		fmt.Fprintf(tw, "CAE\t%s (expires %s)\n", info.CAE, info.CAEExpiry)
		for _, it := range info.Items {
			fmt.Fprintf(tw, "  %s\t%s x %s = %s\n", it.Description, it.Quantity.String(), it.UnitPrice.StringFixed(2), it.Amount.StringFixed(2))
		}
		return tw.Flush()
	})
}

func readVoucher(path string) (*model.VoucherRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read voucher: %w", err)
	}

	var req model.VoucherRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse voucher: %w", err)
	}
	return &req, nil
}

func printVoucherResult(req *model.VoucherRequest, result *model.VoucherResult) error {
	out := map[string]any{
		"sales_point":    req.SalesPoint,
		"voucher_type":   req.VoucherType,
		"voucher_number": req.VoucherNumber,
		"cae":            result.CAE,
		"cae_expiry":     result.CAEExpiry.Format("2006-01-02"),
	}
	return output(out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Voucher %d authorized: CAE %s, expires %s\n",
			req.VoucherNumber, result.CAE, result.CAEExpiry.Format("2006-01-02"))
		return err
	})
}
