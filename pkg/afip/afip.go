// Package afip provides a public API for authorizing itemized vouchers
// with the AFIP WSMTXCA web service.
//
// Example usage:
//
//	client, err := afip.NewClient(afip.DefaultClientOptions(20111111112))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.CreateNextVoucher(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.CAE)
package afip

import (
	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsaa"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

// Re-export core types for public API
type (
	VoucherRequest = model.VoucherRequest
	LineItem       = model.LineItem
	VoucherResult  = model.VoucherResult
	VoucherInfo    = model.VoucherInfo
	VATSubtotal    = model.VATSubtotal
	CatalogEntry   = model.CatalogEntry
	ServerStatus   = model.ServerStatus
	AuthTicket     = model.AuthTicket

	AuthorizeResponse = wsmtxca.AuthorizeResponse
)

// Re-export voucher type codes
const (
	VoucherTypeInvoiceA    = model.VoucherTypeInvoiceA
	VoucherTypeDebitNoteA  = model.VoucherTypeDebitNoteA
	VoucherTypeCreditNoteA = model.VoucherTypeCreditNoteA
	VoucherTypeInvoiceB    = model.VoucherTypeInvoiceB
	VoucherTypeDebitNoteB  = model.VoucherTypeDebitNoteB
	VoucherTypeCreditNoteB = model.VoucherTypeCreditNoteB
)

// Re-export error types
type (
	TransportFault   = model.TransportFault
	ApplicationError = model.ApplicationError
	AuthError        = model.AuthError
	ValidationError  = model.ValidationError
)

// Re-export sentinel errors
var (
	ErrNoResult     = model.ErrNoResult
	ErrMissingField = model.ErrMissingField
	ErrUnknownTable = wsmtxca.ErrUnknownTable
)

// Re-export ticket sources
type (
	TicketProvider = wsaa.Provider
	TicketIssuer   = wsaa.Issuer
	TicketStore    = wsaa.Store
)

// NewStaticProvider returns a provider that always serves ticket
func NewStaticProvider(ticket AuthTicket) TicketProvider {
	return wsaa.NewStaticProvider(ticket)
}
