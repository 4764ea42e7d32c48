package wsmtxca

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// GetVoucherTypes lists the voucher types
func (b *Billing) GetVoucherTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpVoucherTypes, func(r *ResultGet) []ParamEntry { return r.CbteTipo })
}

// GetConceptTypes lists the voucher concepts
func (b *Billing) GetConceptTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpConceptTypes, func(r *ResultGet) []ParamEntry { return r.ConceptoTipo })
}

// GetAliquotTypes lists the VAT aliquots
func (b *Billing) GetAliquotTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpAliquotTypes, func(r *ResultGet) []ParamEntry { return r.IvaTipo })
}

// GetCurrenciesTypes lists the currencies
func (b *Billing) GetCurrenciesTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpCurrencyTypes, func(r *ResultGet) []ParamEntry { return r.Moneda })
}

// GetOptionsTypes lists the optional data types
func (b *Billing) GetOptionsTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpOptionalTypes, func(r *ResultGet) []ParamEntry { return r.OpcionalTipo })
}

// GetTaxTypes lists the taxes
func (b *Billing) GetTaxTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.param(ctx, OpTaxTypes, func(r *ResultGet) []ParamEntry { return r.TributoTipo })
}

// GetDocumentTypes lists the buyer document types
func (b *Billing) GetDocumentTypes(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.codeTable(ctx, OpDocumentTypes, func(r *CodeTableResponse) []CodeDescription { return r.DocumentTypes })
}

// GetUnitsOfMeasure lists the units of measure accepted on line items
func (b *Billing) GetUnitsOfMeasure(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.codeTable(ctx, OpUnitsOfMeasure, func(r *CodeTableResponse) []CodeDescription { return r.UnitsOfMeasure })
}

// GetVATConditions lists the VAT conditions accepted on line items
func (b *Billing) GetVATConditions(ctx context.Context) ([]model.CatalogEntry, error) {
	return b.codeTable(ctx, OpVATConditions, func(r *CodeTableResponse) []CodeDescription { return r.VATConditions })
}

// Reference table names accepted by Catalog
const (
	TableVoucherTypes  = "voucher-types"
	TableConceptTypes  = "concept-types"
	TableDocumentTypes = "document-types"
	TableAliquotTypes  = "aliquot-types"
	TableCurrencies    = "currencies"
	TableOptionalTypes = "optional-types"
	TableTaxTypes      = "tax-types"
	TableUnits         = "units-of-measure"
	TableVATConditions = "vat-conditions"
)

// ErrUnknownTable is returned by Catalog for a table it does not serve
var ErrUnknownTable = errors.New("wsmtxca: unknown reference table")

var tables = map[string]func(*Billing, context.Context) ([]model.CatalogEntry, error){
	TableVoucherTypes:  (*Billing).GetVoucherTypes,
	TableConceptTypes:  (*Billing).GetConceptTypes,
	TableDocumentTypes: (*Billing).GetDocumentTypes,
	TableAliquotTypes:  (*Billing).GetAliquotTypes,
	TableCurrencies:    (*Billing).GetCurrenciesTypes,
	TableOptionalTypes: (*Billing).GetOptionsTypes,
	TableTaxTypes:      (*Billing).GetTaxTypes,
	TableUnits:         (*Billing).GetUnitsOfMeasure,
	TableVATConditions: (*Billing).GetVATConditions,
}

// Tables returns the names accepted by Catalog, sorted
func Tables() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog fetches a reference table by name
func (b *Billing) Catalog(ctx context.Context, table string) ([]model.CatalogEntry, error) {
	get, ok := tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	return get(b, ctx)
}

func (b *Billing) param(ctx context.Context, operation string, pick func(*ResultGet) []ParamEntry) ([]model.CatalogEntry, error) {
	req := &ParamRequest{XMLName: xml.Name{Space: Namespace, Local: operation}}

	var resp ParamResponse
	res, err := b.client.Execute(ctx, operation, req, &resp)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	rows := pick(&resp.Result.ResultGet)
	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.CatalogEntry{
			ID:          row.ID,
			Description: row.Desc,
			ValidFrom:   row.ValidFrom,
			ValidTo:     row.ValidTo,
		})
	}
	return entries, nil
}

func (b *Billing) codeTable(ctx context.Context, operation string, pick func(*CodeTableResponse) []CodeDescription) ([]model.CatalogEntry, error) {
	req := &CodeTableRequest{XMLName: xml.Name{Space: Namespace, Local: operation + "Request"}}

	var resp CodeTableResponse
	res, err := b.client.Execute(ctx, operation, req, &resp)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	rows := pick(&resp)
	entries := make([]model.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, model.CatalogEntry{
			ID:          row.Code,
			Description: row.Description,
		})
	}
	return entries, nil
}
