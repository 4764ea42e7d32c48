package wsmtxca

import (
	"encoding/xml"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// AuthRequest carries the access ticket of an authenticated call
type AuthRequest struct {
	Token string `xml:"token,omitempty"`
	Sign  string `xml:"sign,omitempty"`
	CUIT  int64  `xml:"cuitRepresentada,omitempty"`
}

// Authenticated is embedded by every request that needs credentials.
// RequestBuilder fills it in.
type Authenticated struct {
	Auth *AuthRequest `xml:"authRequest,omitempty"`
}

// Credentials returns the credentials currently set on the request
func (a *Authenticated) Credentials() *AuthRequest {
	return a.Auth
}

// SetCredentials replaces the credentials of the request
func (a *Authenticated) SetCredentials(auth *AuthRequest) {
	a.Auth = auth
}

// CodeDescription is the generic code/description pair used by error lists,
// observations and code tables
type CodeDescription struct {
	Code        string `xml:"codigo"`
	Description string `xml:"descripcion"`
}

// ErrorList is embedded by every response of the WSMTXCA service
type ErrorList struct {
	Errors       []CodeDescription `xml:"arrayErrores>codigoDescripcion"`
	Observations []CodeDescription `xml:"arrayObservaciones>codigoDescripcion"`
}

// Failures converts the returned error list into application errors
func (l *ErrorList) Failures(operation string) []*model.ApplicationError {
	if len(l.Errors) == 0 {
		return nil
	}
	out := make([]*model.ApplicationError, 0, len(l.Errors))
	for _, e := range l.Errors {
		out = append(out, model.NewApplicationError(operation, atoiOrZero(e.Code), e.Description))
	}
	return out
}

// DummyRequest is the unauthenticated health check
type DummyRequest struct {
	XMLName xml.Name `xml:"http://impl.service.wsmtxca.afip.gov.ar/service/ dummy"`
}

// DummyResponse reports the state of the service components
type DummyResponse struct {
	XMLName    xml.Name `xml:"dummyResponse"`
	AppServer  string   `xml:"appserver"`
	DbServer   string   `xml:"dbserver"`
	AuthServer string   `xml:"authserver"`
}

// LastVoucherQuery selects a voucher sequence
type LastVoucherQuery struct {
	VoucherType int `xml:"codigoTipoComprobante"`
	SalesPoint  int `xml:"numeroPuntoVenta"`
}

// LastVoucherRequest asks for the last authorized voucher number
type LastVoucherRequest struct {
	XMLName xml.Name `xml:"http://impl.service.wsmtxca.afip.gov.ar/service/ consultarUltimoComprobanteAutorizadoRequest"`
	Authenticated
	Query LastVoucherQuery `xml:"consultaUltimoComprobanteAutorizadoRequest"`
}

// LastVoucherResponse holds the last authorized voucher number. Number is
// nil when the service left the field out.
type LastVoucherResponse struct {
	XMLName xml.Name `xml:"consultarUltimoComprobanteAutorizadoResponse"`
	Number  *int64   `xml:"numeroComprobante"`
	ErrorList
}

// Item is one line of a voucher as sent on the wire
type Item struct {
	Units         int    `xml:"unidadesMtx"`
	MtxCode       string `xml:"codigoMtx"`
	Code          string `xml:"codigo"`
	Description   string `xml:"descripcion"`
	Quantity      string `xml:"cantidad"`
	UnitOfMeasure int    `xml:"codigoUnidadMedida"`
	UnitPrice     string `xml:"precioUnitario"`
	TaxCondition  int    `xml:"codigoCondicionIVA"`
	Amount        string `xml:"importeItem"`
}

// VATSubtotal is one bracket of the VAT breakdown
type VATSubtotal struct {
	Code   int    `xml:"codigo"`
	Amount string `xml:"importe"`
}

// VoucherCAERequest is the voucher submitted for authorization
type VoucherCAERequest struct {
	VoucherType    int           `xml:"codigoTipoComprobante"`
	SalesPoint     int           `xml:"numeroPuntoVenta"`
	VoucherNumber  int64         `xml:"numeroComprobante"`
	IssueDate      string        `xml:"fechaEmision"`
	DocumentType   string        `xml:"codigoTipoDocumento"`
	DocumentNumber string        `xml:"numeroDocumento"`
	TaxedAmount    string        `xml:"importeGravado"`
	UntaxedAmount  string        `xml:"importeNoGravado"`
	ExemptAmount   string        `xml:"importeExento"`
	Subtotal       string        `xml:"importeSubtotal"`
	TotalAmount    string        `xml:"importeTotal"`
	Currency       string        `xml:"codigoMoneda"`
	ExchangeRate   string        `xml:"cotizacionMoneda"`
	Concept        int           `xml:"codigoConcepto"`
	Items          []Item        `xml:"arrayItems>item"`
	VAT            []VATSubtotal `xml:"arraySubtotalesIVA>subtotalIVA"`
}

// AuthorizeRequest asks for a CAE for one voucher
type AuthorizeRequest struct {
	XMLName xml.Name `xml:"http://impl.service.wsmtxca.afip.gov.ar/service/ autorizarComprobanteRequest"`
	Authenticated
	Voucher VoucherCAERequest `xml:"comprobanteCAERequest"`
}

// VoucherCAEResponse is the authorization granted to a voucher
type VoucherCAEResponse struct {
	CUIT          int64  `xml:"cuit"`
	VoucherType   int    `xml:"codigoTipoComprobante"`
	SalesPoint    int    `xml:"numeroPuntoVenta"`
	VoucherNumber int64  `xml:"numeroComprobante"`
	IssueDate     string `xml:"fechaEmision"`
	CAE           string `xml:"CAE"`
	CAEExpiry     string `xml:"fechaVencimientoCAE"`
}

// AuthorizeResponse is the full reply of an authorization
type AuthorizeResponse struct {
	XMLName xml.Name            `xml:"autorizarComprobanteResponse"`
	Outcome string              `xml:"resultado"`
	Voucher *VoucherCAEResponse `xml:"comprobanteResponse"`
	ErrorList
}

// VoucherQuery selects one voucher
type VoucherQuery struct {
	VoucherType   int   `xml:"codigoTipoComprobante"`
	SalesPoint    int   `xml:"numeroPuntoVenta"`
	VoucherNumber int64 `xml:"numeroComprobante"`
}

// VoucherInfoRequest asks for the stored state of a voucher
type VoucherInfoRequest struct {
	XMLName xml.Name `xml:"http://impl.service.wsmtxca.afip.gov.ar/service/ consultarComprobanteRequest"`
	Authenticated
	Query VoucherQuery `xml:"consultaComprobanteRequest"`
}

// ResponseItem is a voucher line as returned by the service
type ResponseItem struct {
	Units         int             `xml:"unidadesMtx"`
	MtxCode       string          `xml:"codigoMtx"`
	Code          string          `xml:"codigo"`
	Description   string          `xml:"descripcion"`
	Quantity      decimal.Decimal `xml:"cantidad"`
	UnitOfMeasure int             `xml:"codigoUnidadMedida"`
	UnitPrice     decimal.Decimal `xml:"precioUnitario"`
	TaxCondition  int             `xml:"codigoCondicionIVA"`
	Amount        decimal.Decimal `xml:"importeItem"`
}

// ResponseVATSubtotal is a VAT bracket as returned by the service
type ResponseVATSubtotal struct {
	Code   int             `xml:"codigo"`
	Amount decimal.Decimal `xml:"importe"`
}

// StoredVoucher is an authorized voucher as stored by the service
type StoredVoucher struct {
	VoucherType    int                   `xml:"codigoTipoComprobante"`
	SalesPoint     int                   `xml:"numeroPuntoVenta"`
	VoucherNumber  int64                 `xml:"numeroComprobante"`
	IssueDate      string                `xml:"fechaEmision"`
	DocumentType   int                   `xml:"codigoTipoDocumento"`
	DocumentNumber string                `xml:"numeroDocumento"`
	TaxedAmount    decimal.Decimal       `xml:"importeGravado"`
	Subtotal       decimal.Decimal       `xml:"importeSubtotal"`
	TotalAmount    decimal.Decimal       `xml:"importeTotal"`
	Currency       string                `xml:"codigoMoneda"`
	ExchangeRate   decimal.Decimal       `xml:"cotizacionMoneda"`
	Concept        int                   `xml:"codigoConcepto"`
	CAE            string                `xml:"codigoAutorizacion"`
	CAEExpiry      string                `xml:"fechaVencimiento"`
	Items          []ResponseItem        `xml:"arrayItems>item"`
	VAT            []ResponseVATSubtotal `xml:"arraySubtotalesIVA>subtotalIVA"`
}

// VoucherInfoResponse holds the queried voucher, nil when absent
type VoucherInfoResponse struct {
	XMLName xml.Name       `xml:"consultarComprobanteResponse"`
	Voucher *StoredVoucher `xml:"comprobante"`
	ErrorList
}

// CodeTableRequest asks for one of the code tables of the WSMTXCA service.
// XMLName is set to the operation request element.
type CodeTableRequest struct {
	XMLName xml.Name
	Authenticated
}

// CodeTableResponse holds a code table. Only the array matching the
// requested table is populated.
type CodeTableResponse struct {
	XMLName        xml.Name
	DocumentTypes  []CodeDescription `xml:"arrayTiposDocumento>codigoDescripcion"`
	UnitsOfMeasure []CodeDescription `xml:"arrayUnidadesMedida>codigoDescripcion"`
	VATConditions  []CodeDescription `xml:"arrayCondicionesIVA>codigoDescripcion"`
	ErrorList
}

// ParamRequest asks for a reference table (FEParamGet* operations).
// XMLName is set to the operation name.
type ParamRequest struct {
	XMLName xml.Name
	Authenticated
}

// ParamEntry is one row of a reference table
type ParamEntry struct {
	ID        string `xml:"Id"`
	Desc      string `xml:"Desc"`
	ValidFrom string `xml:"FchDesde"`
	ValidTo   string `xml:"FchHasta"`
}

// ResultGet groups the reference table arrays
type ResultGet struct {
	CbteTipo     []ParamEntry `xml:"CbteTipo"`
	ConceptoTipo []ParamEntry `xml:"ConceptoTipo"`
	IvaTipo      []ParamEntry `xml:"IvaTipo"`
	Moneda       []ParamEntry `xml:"Moneda"`
	OpcionalTipo []ParamEntry `xml:"OpcionalTipo"`
	TributoTipo  []ParamEntry `xml:"TributoTipo"`
}

// ParamError is one entry of a reference table error list
type ParamError struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

// ParamResult is the <operation>Result element
type ParamResult struct {
	ResultGet ResultGet    `xml:"ResultGet"`
	Errors    []ParamError `xml:"Errors>Err"`
}

// ParamResponse holds a reference table reply. The result element is named
// after the operation, so it is matched by position.
type ParamResponse struct {
	XMLName xml.Name
	Result  ParamResult `xml:",any"`
}

// Failures converts the returned error list into application errors
func (r *ParamResponse) Failures(operation string) []*model.ApplicationError {
	if len(r.Result.Errors) == 0 {
		return nil
	}
	out := make([]*model.ApplicationError, 0, len(r.Result.Errors))
	for _, e := range r.Result.Errors {
		out = append(out, model.NewApplicationError(operation, e.Code, e.Msg))
	}
	return out
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
