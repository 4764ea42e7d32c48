package server

import "github.com/rezonia/wsmtxca-client/internal/model"

// LastVoucherResponse is the response for the last voucher endpoint
type LastVoucherResponse struct {
	SalesPoint    int   `json:"sales_point"`
	VoucherType   int   `json:"voucher_type"`
	VoucherNumber int64 `json:"voucher_number"`
	Found         bool  `json:"found"`
}

// VoucherResponse is the response for the voucher creation endpoints
type VoucherResponse struct {
	SalesPoint    int    `json:"sales_point"`
	VoucherType   int    `json:"voucher_type"`
	VoucherNumber int64  `json:"voucher_number"`
	CAE           string `json:"cae"`
	CAEExpiry     string `json:"cae_expiry"`
}

func newVoucherResponse(req *model.VoucherRequest, result *model.VoucherResult) VoucherResponse {
	return VoucherResponse{
		SalesPoint:    req.SalesPoint,
		VoucherType:   req.VoucherType,
		VoucherNumber: req.VoucherNumber,
		CAE:           result.CAE,
		CAEExpiry:     result.CAEExpiry.Format("2006-01-02"),
	}
}

// TableResponse is the response for reference table endpoints
type TableResponse struct {
	Table   string               `json:"table"`
	Entries []model.CatalogEntry `json:"entries"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
