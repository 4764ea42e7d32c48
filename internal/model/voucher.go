package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Voucher type codes commonly used with the WSMTXCA service
const (
	VoucherTypeInvoiceA    = 1
	VoucherTypeDebitNoteA  = 2
	VoucherTypeCreditNoteA = 3
	VoucherTypeInvoiceB    = 6
	VoucherTypeDebitNoteB  = 7
	VoucherTypeCreditNoteB = 8
)

// VoucherRequest describes a single voucher to be authorized
type VoucherRequest struct {
	VoucherType    int             `json:"voucher_type"`
	SalesPoint     int             `json:"sales_point"`
	VoucherNumber  int64           `json:"voucher_number,omitempty"`
	DocumentType   int             `json:"document_type,omitempty"`
	DocumentNumber string          `json:"document_number"`
	TaxedAmount    decimal.Decimal `json:"taxed_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []LineItem      `json:"items"`
}

// LineItem is one ordered line of a voucher
type LineItem struct {
	Units         int             `json:"units"`
	MtxCode       string          `json:"mtx_code"`
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	UnitOfMeasure int             `json:"unit_of_measure"`
	TaxCondition  int             `json:"tax_condition"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"`
}

// DocumentTypeDNI is the buyer document type sent with every voucher
const DocumentTypeDNI = 96

// Validate checks the request invariants: at least one line item,
// total >= taxed >= 0 and non-negative line amounts.
func (r *VoucherRequest) Validate() error {
	if r.DocumentType != 0 && r.DocumentType != DocumentTypeDNI {
		return NewValidationError("document_type", r.DocumentType, "oneof=0 96", "only national ID buyers are supported")
	}
	if len(r.Items) == 0 {
		return NewValidationError("items", 0, "min=1", "at least one line item is required")
	}
	if r.TaxedAmount.IsNegative() {
		return NewValidationError("taxed_amount", r.TaxedAmount.String(), "gte=0", "taxed amount must not be negative")
	}
	if r.TotalAmount.LessThan(r.TaxedAmount) {
		return NewValidationError("total_amount", r.TotalAmount.String(), "gtefield=taxed_amount", "total amount must not be lower than taxed amount")
	}
	for i, item := range r.Items {
		if err := item.validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (li LineItem) validate(index int) error {
	checks := []struct {
		field string
		value decimal.Decimal
	}{
		{"quantity", li.Quantity},
		{"unit_price", li.UnitPrice},
		{"amount", li.Amount},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return NewValidationError(
				"items["+strconv.Itoa(index)+"]."+c.field, c.value.String(), "gte=0",
				"line item amounts must not be negative",
			)
		}
	}
	return nil
}

// VoucherResult holds the authorization granted to a voucher
type VoucherResult struct {
	CAE       string    `json:"cae"`
	CAEExpiry time.Time `json:"cae_expiry"`
}

// VATSubtotal is one bracket of the tax breakdown
type VATSubtotal struct {
	Code   int             `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// VoucherInfo is the stored state of an authorized voucher
type VoucherInfo struct {
	VoucherType    int             `json:"voucher_type"`
	SalesPoint     int             `json:"sales_point"`
	VoucherNumber  int64           `json:"voucher_number"`
	IssueDate      string          `json:"issue_date"`
	DocumentType   int             `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	TaxedAmount    decimal.Decimal `json:"taxed_amount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Concept        int             `json:"concept"`
	CAE            string          `json:"cae"`
	CAEExpiry      string          `json:"cae_expiry"`
	VAT            []VATSubtotal   `json:"vat,omitempty"`
	Items          []LineItem      `json:"items,omitempty"`
}

// CatalogEntry is one row of a reference table (voucher types, currencies,
// aliquots...). Identifiers are kept as text since some tables use
// alphanumeric codes.
type CatalogEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	ValidFrom   string `json:"valid_from,omitempty"`
	ValidTo     string `json:"valid_to,omitempty"`
}

// ServerStatus is the health of the remote service components
type ServerStatus struct {
	AppServer  string `json:"app_server"`
	DbServer   string `json:"db_server"`
	AuthServer string `json:"auth_server"`
}
