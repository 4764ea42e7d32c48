package wsmtxca

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	money "github.com/rezonia/wsmtxca-client/internal/decimal"
	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/soap"
	"github.com/rezonia/wsmtxca-client/internal/wsaa"
)

// Billing is the caller-facing API of the WSMTXCA service
type Billing struct {
	client *ServiceClient
	now    func() time.Time
	logger *zap.Logger
}

// Option configures Billing
type Option func(*billingConfig)

type billingConfig struct {
	logger *zap.Logger
	now    func() time.Time
}

// WithLogger sets the logger used by Billing and its ServiceClient
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *billingConfig) {
		cfg.logger = logger
	}
}

// WithClock overrides the clock used for the issue date of new vouchers
func WithClock(now func() time.Time) Option {
	return func(cfg *billingConfig) {
		cfg.now = now
	}
}

// New creates a Billing calling the service over channel with tickets from
// provider
func New(channel soap.Channel, provider wsaa.Provider, opts ...Option) *Billing {
	cfg := &billingConfig{
		logger: zap.NewNop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Billing{
		client: NewServiceClient(channel, NewRequestBuilder(provider), cfg.logger),
		now:    cfg.now,
		logger: cfg.logger,
	}
}

// GetLastVoucher returns the number of the last voucher authorized for the
// sales point and voucher type. found is false when none was authorized
// yet.
func (b *Billing) GetLastVoucher(ctx context.Context, salesPoint, voucherType int) (number int64, found bool, err error) {
	req := &LastVoucherRequest{
		Query: LastVoucherQuery{
			VoucherType: voucherType,
			SalesPoint:  salesPoint,
		},
	}

	var resp LastVoucherResponse
	res, err := b.client.Execute(ctx, OpLastVoucher, req, &resp)
	if err != nil {
		if model.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if res.NoResult {
		if res.Has(model.CodeNotFound) {
			return 0, false, nil
		}
		return 0, false, res.Err()
	}

	if resp.Number == nil {
		return 0, false, fmt.Errorf("%s: numeroComprobante: %w", OpLastVoucher, model.ErrMissingField)
	}

	return *resp.Number, true, nil
}

// CreateVoucher requests a CAE for req and returns it with its expiry date
func (b *Billing) CreateVoucher(ctx context.Context, req *model.VoucherRequest) (*model.VoucherResult, error) {
	resp, err := b.CreateVoucherRaw(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.Voucher == nil {
		return nil, fmt.Errorf("%s: comprobanteResponse: %w", OpAuthorize, model.ErrMissingField)
	}

	expiry, err := parseServiceDate(resp.Voucher.CAEExpiry)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid fechaVencimientoCAE %q: %w", OpAuthorize, resp.Voucher.CAEExpiry, err)
	}

	return &model.VoucherResult{
		CAE:       resp.Voucher.CAE,
		CAEExpiry: expiry,
	}, nil
}

// CreateVoucherRaw requests a CAE for req and returns the reply as sent by
// the service. req must carry its voucher number.
func (b *Billing) CreateVoucherRaw(ctx context.Context, req *model.VoucherRequest) (*AuthorizeResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("request", nil, "required", "voucher request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.VoucherNumber < 1 {
		return nil, model.NewValidationError("voucher_number", req.VoucherNumber, "gte=1", "voucher number must be set")
	}

	wireReq := &AuthorizeRequest{Voucher: b.compose(req)}

	var resp AuthorizeResponse
	res, err := b.client.Execute(ctx, OpAuthorize, wireReq, &resp)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	b.logger.Info("voucher authorized",
		zap.Int("voucher_type", req.VoucherType),
		zap.Int("sales_point", req.SalesPoint),
		zap.Int64("voucher_number", req.VoucherNumber))

	return &resp, nil
}

// CreateNextVoucher numbers req after the last authorized voucher of its
// sales point and type, then authorizes it. The first voucher of a
// sequence gets number 1. The assigned number is left in
// req.VoucherNumber.
func (b *Billing) CreateNextVoucher(ctx context.Context, req *model.VoucherRequest) (*model.VoucherResult, error) {
	if req == nil {
		return nil, model.NewValidationError("request", nil, "required", "voucher request is required")
	}

	last, _, err := b.GetLastVoucher(ctx, req.SalesPoint, req.VoucherType)
	if err != nil {
		return nil, err
	}

	req.VoucherNumber = last + 1

	return b.CreateVoucher(ctx, req)
}

// GetVoucherInfo returns a stored voucher. found is false when the service
// does not know it.
func (b *Billing) GetVoucherInfo(ctx context.Context, number int64, salesPoint, voucherType int) (info *model.VoucherInfo, found bool, err error) {
	req := &VoucherInfoRequest{
		Query: VoucherQuery{
			VoucherType:   voucherType,
			SalesPoint:    salesPoint,
			VoucherNumber: number,
		},
	}

	var resp VoucherInfoResponse
	res, err := b.client.Execute(ctx, OpVoucherInfo, req, &resp)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if res.NoResult {
		if res.Has(model.CodeNotFound) {
			return nil, false, nil
		}
		return nil, false, res.Err()
	}

	if resp.Voucher == nil {
		return nil, false, fmt.Errorf("%s: comprobante: %w", OpVoucherInfo, model.ErrMissingField)
	}

	return resp.Voucher.toModel(), true, nil
}

// GetServerStatus runs the unauthenticated health check
func (b *Billing) GetServerStatus(ctx context.Context) (*model.ServerStatus, error) {
	var resp DummyResponse
	if _, err := b.client.Execute(ctx, OpDummy, &DummyRequest{}, &resp); err != nil {
		return nil, err
	}

	return &model.ServerStatus{
		AppServer:  resp.AppServer,
		DbServer:   resp.DbServer,
		AuthServer: resp.AuthServer,
	}, nil
}

// FormatDate converts a service date (YYYYMMDD) to YYYY-MM-DD
func (b *Billing) FormatDate(compact string) (string, error) {
	return FormatDate(compact)
}

func (b *Billing) compose(req *model.VoucherRequest) VoucherCAERequest {
	vat, net := money.SplitVATIncluded(req.TotalAmount)

	items := make([]Item, 0, len(req.Items))
	for _, li := range req.Items {
		items = append(items, Item{
			Units:         li.Units,
			MtxCode:       li.MtxCode,
			Code:          li.Code,
			Description:   li.Description,
			Quantity:      li.Quantity.String(),
			UnitOfMeasure: li.UnitOfMeasure,
			UnitPrice:     li.UnitPrice.String(),
			TaxCondition:  li.TaxCondition,
			Amount:        money.Wire(li.Amount),
		})
	}

	return VoucherCAERequest{
		VoucherType:    req.VoucherType,
		SalesPoint:     req.SalesPoint,
		VoucherNumber:  req.VoucherNumber,
		IssueDate:      b.now().Format(isoDateLayout),
		DocumentType:   BuyerDocumentType,
		DocumentNumber: req.DocumentNumber,
		TaxedAmount:    money.Wire(net),
		UntaxedAmount:  money.Wire(money.Zero),
		ExemptAmount:   money.Wire(money.Zero),
		Subtotal:       money.Wire(req.TaxedAmount),
		TotalAmount:    money.Wire(req.TotalAmount),
		Currency:       DefaultCurrency,
		ExchangeRate:   DefaultExchange,
		Concept:        DefaultConcept,
		Items:          items,
		VAT: []VATSubtotal{
			{Code: AliquotCode21, Amount: money.Wire(vat)},
		},
	}
}

func (v *StoredVoucher) toModel() *model.VoucherInfo {
	info := &model.VoucherInfo{
		VoucherType:    v.VoucherType,
		SalesPoint:     v.SalesPoint,
		VoucherNumber:  v.VoucherNumber,
		IssueDate:      v.IssueDate,
		DocumentType:   v.DocumentType,
		DocumentNumber: v.DocumentNumber,
		TaxedAmount:    v.TaxedAmount,
		Subtotal:       v.Subtotal,
		TotalAmount:    v.TotalAmount,
		Currency:       v.Currency,
		ExchangeRate:   v.ExchangeRate,
		Concept:        v.Concept,
		CAE:            v.CAE,
		CAEExpiry:      v.CAEExpiry,
	}

	for _, s := range v.VAT {
		info.VAT = append(info.VAT, model.VATSubtotal{Code: s.Code, Amount: s.Amount})
	}
	for _, it := range v.Items {
		info.Items = append(info.Items, model.LineItem{
			Units:         it.Units,
			MtxCode:       it.MtxCode,
			Code:          it.Code,
			Description:   it.Description,
			UnitOfMeasure: it.UnitOfMeasure,
			TaxCondition:  it.TaxCondition,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Amount:        it.Amount,
		})
	}

	return info
}
