// Package wsmtxca is a client for the AFIP electronic billing service with
// line items (WSMTXCA).
//
// Billing exposes the caller-facing operations. Each one shapes a typed
// request, hands it to ServiceClient, which attaches credentials through
// RequestBuilder, performs the call over a soap.Channel and classifies the
// reply, and finally shapes the typed response into a return value.
package wsmtxca

// ServiceName identifies this service towards the authentication service
const ServiceName = "wsmtxca"

// Namespace of the service messages
const Namespace = "http://impl.service.wsmtxca.afip.gov.ar/service/"

// Service endpoints
const (
	HomologationURL = "https://fwshomo.afip.gov.ar/wsmtxca/services/MTXCAService"
	ProductionURL   = "https://serviciosjava.afip.gob.ar/wsmtxca/services/MTXCAService"
)

// Remote operation names
const (
	OpDummy          = "dummy"
	OpLastVoucher    = "consultarUltimoComprobanteAutorizado"
	OpAuthorize      = "autorizarComprobante"
	OpVoucherInfo    = "consultarComprobante"
	OpDocumentTypes  = "consultarTiposDocumento"
	OpUnitsOfMeasure = "consultarUnidadesMedida"
	OpVATConditions  = "consultarCondicionesIVA"
	OpVoucherTypes   = "FEParamGetTiposCbte"
	OpConceptTypes   = "FEParamGetTiposConcepto"
	OpAliquotTypes   = "FEParamGetTiposIva"
	OpCurrencyTypes  = "FEParamGetTiposMonedas"
	OpOptionalTypes  = "FEParamGetTiposOpcional"
	OpTaxTypes       = "FEParamGetTiposTributos"
)

// Fixed values sent with every authorized voucher
const (
	// national ID (DNI)
	BuyerDocumentType = "96"
	DefaultCurrency   = "PES"
	DefaultExchange   = "1"
	DefaultConcept    = 1
	// 21% VAT bracket
	AliquotCode21 = 5
)

// Date layouts used on the wire
const (
	isoDateLayout     = "2006-01-02"
	compactDateLayout = "20060102"
)
