package wsmtxca_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

type BillingTestSuite struct {
	suite.Suite
	ctx      context.Context
	channel  *MockChannel
	provider *MockProvider
	billing  *wsmtxca.Billing
	today    time.Time
}

func (suite *BillingTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.channel = new(MockChannel)
	suite.provider = new(MockProvider)
	suite.provider.On("Ticket", mock.Anything, wsmtxca.ServiceName).Return(testTicket(), nil)
	suite.today = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	suite.billing = wsmtxca.New(suite.channel, suite.provider,
		wsmtxca.WithClock(func() time.Time { return suite.today }))
}

func TestBillingTestSuite(t *testing.T) {
	suite.Run(t, new(BillingTestSuite))
}

func voucherRequest(total string) *model.VoucherRequest {
	amount := decimal.RequireFromString(total)
	return &model.VoucherRequest{
		VoucherType:    model.VoucherTypeInvoiceB,
		SalesPoint:     4,
		VoucherNumber:  1,
		DocumentNumber: "37375002",
		TaxedAmount:    amount,
		TotalAmount:    amount,
		Items: []model.LineItem{
			{
				Units:         1,
				MtxCode:       "7790001001030",
				Code:          "rma",
				Description:   "RMA",
				UnitOfMeasure: 7,
				TaxCondition:  5,
				Quantity:      decimal.NewFromInt(1),
				UnitPrice:     amount,
				Amount:        amount,
			},
			{
				Units:         1,
				MtxCode:       "7790001001047",
				Code:          "ship",
				Description:   "Shipping",
				UnitOfMeasure: 7,
				TaxCondition:  1,
				Quantity:      decimal.NewFromInt(1),
				UnitPrice:     decimal.Zero,
				Amount:        decimal.Zero,
			},
		},
	}
}

func (suite *BillingTestSuite) expectLast(number *int64, fault error) {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpLastVoucher, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(3).(*wsmtxca.LastVoucherResponse).Number = number
		}).
		Return(fault).Once()
}

// expectAuthorize answers the authorization and returns the request sent
func (suite *BillingTestSuite) expectAuthorize(cae, expiry string) *wsmtxca.AuthorizeRequest {
	sent := &wsmtxca.AuthorizeRequest{}
	suite.channel.On("Call", mock.Anything, wsmtxca.OpAuthorize, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*sent = *args.Get(2).(*wsmtxca.AuthorizeRequest)
			resp := args.Get(3).(*wsmtxca.AuthorizeResponse)
			resp.Outcome = "A"
			resp.Voucher = &wsmtxca.VoucherCAEResponse{
				CUIT:          testCUIT,
				VoucherType:   sent.Voucher.VoucherType,
				SalesPoint:    sent.Voucher.SalesPoint,
				VoucherNumber: sent.Voucher.VoucherNumber,
				IssueDate:     sent.Voucher.IssueDate,
				CAE:           cae,
				CAEExpiry:     expiry,
			}
		}).
		Return(nil).Once()
	return sent
}

func int64Ptr(v int64) *int64 {
	return &v
}

// --- GetLastVoucher ---

func (suite *BillingTestSuite) TestGetLastVoucher_Found() {
	suite.expectLast(int64Ptr(41), nil)

	number, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(int64(41), number)
	suite.channel.AssertExpectations(suite.T())
}

func (suite *BillingTestSuite) TestGetLastVoucher_SendsQuery() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpLastVoucher, mock.MatchedBy(func(r *wsmtxca.LastVoucherRequest) bool {
		return r.Query.SalesPoint == 4 &&
			r.Query.VoucherType == model.VoucherTypeInvoiceA &&
			r.Auth != nil && r.Auth.CUIT == testCUIT
	}), mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(3).(*wsmtxca.LastVoucherResponse).Number = int64Ptr(0)
		}).
		Return(nil).Once()

	number, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceA)

	suite.Require().NoError(err)
	suite.True(found)
	suite.Zero(number)
	suite.channel.AssertExpectations(suite.T())
}

func (suite *BillingTestSuite) TestGetLastVoucher_NotFoundFault() {
	suite.expectLast(nil, model.NewTransportFault(wsmtxca.OpLastVoucher, "602", "No existen datos en nuestros registros", nil))

	number, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.Require().NoError(err)
	suite.False(found)
	suite.Zero(number)
}

func (suite *BillingTestSuite) TestGetLastVoucher_NotFoundErrorList() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpLastVoucher, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.LastVoucherResponse)
			resp.Errors = []wsmtxca.CodeDescription{{Code: "602", Description: "No existen datos en nuestros registros"}}
		}).
		Return(nil).Once()

	_, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.Require().NoError(err)
	suite.False(found)
}

func (suite *BillingTestSuite) TestGetLastVoucher_OtherFaultPropagates() {
	fault := model.NewTransportFault(wsmtxca.OpLastVoucher, "ns1:coe.notAuthorized", "Computador no autorizado", nil)
	suite.expectLast(nil, fault)

	_, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.Same(fault, err)
	suite.False(found)
}

func (suite *BillingTestSuite) TestGetLastVoucher_OtherErrorListPropagates() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpLastVoucher, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.LastVoucherResponse)
			resp.Errors = []wsmtxca.CodeDescription{{Code: "1501", Description: "Punto de venta invalido"}}
		}).
		Return(nil).Once()

	_, _, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.Require().Error(err)
	suite.ErrorIs(err, model.ErrNoResult)
	code, ok := model.ErrorCode(err)
	suite.True(ok)
	suite.Equal(1501, code)
}

func (suite *BillingTestSuite) TestGetLastVoucher_MissingField() {
	suite.expectLast(nil, nil)

	_, found, err := suite.billing.GetLastVoucher(suite.ctx, 4, model.VoucherTypeInvoiceB)

	suite.ErrorIs(err, model.ErrMissingField)
	suite.False(found)
}

// --- CreateVoucher ---

func (suite *BillingTestSuite) TestCreateVoucher_ComposesRequest() {
	sent := suite.expectAuthorize("76123456789012", "2026-10-25")

	req := voucherRequest("121")
	req.VoucherNumber = 42
	req.TaxedAmount = decimal.NewFromInt(100)

	_, err := suite.billing.CreateVoucher(suite.ctx, req)
	suite.Require().NoError(err)

	v := sent.Voucher
	suite.Equal(model.VoucherTypeInvoiceB, v.VoucherType)
	suite.Equal(4, v.SalesPoint)
	suite.Equal(int64(42), v.VoucherNumber)
	suite.Equal("2026-10-15", v.IssueDate)
	suite.Equal("96", v.DocumentType)
	suite.Equal("37375002", v.DocumentNumber)
	suite.Equal("100.00", v.TaxedAmount)
	suite.Equal("0.00", v.UntaxedAmount)
	suite.Equal("0.00", v.ExemptAmount)
	suite.Equal("100.00", v.Subtotal)
	suite.Equal("121.00", v.TotalAmount)
	suite.Equal("PES", v.Currency)
	suite.Equal("1", v.ExchangeRate)
	suite.Equal(1, v.Concept)
	suite.Equal([]wsmtxca.VATSubtotal{{Code: 5, Amount: "21.00"}}, v.VAT)

	suite.Require().Len(v.Items, 2)
	suite.Equal("rma", v.Items[0].Code)
	suite.Equal("121.00", v.Items[0].Amount)
	suite.Equal("ship", v.Items[1].Code)

	suite.Require().NotNil(sent.Auth)
	suite.Equal(testTicket().Token, sent.Auth.Token)
}

func (suite *BillingTestSuite) TestCreateVoucher_TaxSplit() {
	tests := []struct {
		total string
		vat   string
		net   string
	}{
		{"121", "21.00", "100.00"},
		{"100", "17.36", "82.64"},
		{"1000.50", "173.64", "826.86"},
		{"0.01", "0.00", "0.01"},
	}

	for _, tt := range tests {
		suite.Run(tt.total, func() {
			suite.SetupTest()
			sent := suite.expectAuthorize("76123456789012", "2026-10-25")

			_, err := suite.billing.CreateVoucher(suite.ctx, voucherRequest(tt.total))
			suite.Require().NoError(err)

			suite.Equal(tt.vat, sent.Voucher.VAT[0].Amount)
			suite.Equal(tt.net, sent.Voucher.TaxedAmount)
		})
	}
}

func (suite *BillingTestSuite) TestCreateVoucher_ReturnsCAE() {
	suite.expectAuthorize("76123456789012", "2026-10-25")

	result, err := suite.billing.CreateVoucher(suite.ctx, voucherRequest("121"))

	suite.Require().NoError(err)
	suite.Equal(&model.VoucherResult{
		CAE:       "76123456789012",
		CAEExpiry: time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC),
	}, result)
}

func (suite *BillingTestSuite) TestCreateVoucher_CompactExpiry() {
	suite.expectAuthorize("76123456789012", "20261025")

	result, err := suite.billing.CreateVoucher(suite.ctx, voucherRequest("121"))

	suite.Require().NoError(err)
	suite.Equal(time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC), result.CAEExpiry)
}

func (suite *BillingTestSuite) TestCreateVoucherRaw_ReturnsFullResponse() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpAuthorize, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.AuthorizeResponse)
			resp.Outcome = "O"
			resp.Voucher = &wsmtxca.VoucherCAEResponse{CAE: "76123456789012", CAEExpiry: "2026-10-25"}
			resp.Observations = []wsmtxca.CodeDescription{{Code: "35", Description: "Observacion"}}
		}).
		Return(nil).Once()

	resp, err := suite.billing.CreateVoucherRaw(suite.ctx, voucherRequest("121"))

	suite.Require().NoError(err)
	suite.Equal("O", resp.Outcome)
	suite.Equal("76123456789012", resp.Voucher.CAE)
	suite.Equal("2026-10-25", resp.Voucher.CAEExpiry)
	suite.Len(resp.Observations, 1)
}

func (suite *BillingTestSuite) TestCreateVoucher_Rejected() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpAuthorize, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.AuthorizeResponse)
			resp.Outcome = "R"
			resp.Errors = []wsmtxca.CodeDescription{{Code: "1503", Description: "numeroComprobante no correlativo"}}
		}).
		Return(nil).Once()

	result, err := suite.billing.CreateVoucher(suite.ctx, voucherRequest("121"))

	suite.Nil(result)
	suite.ErrorIs(err, model.ErrNoResult)
	var appErr *model.ApplicationError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(1503, appErr.Code)
}

func (suite *BillingTestSuite) TestCreateVoucher_FaultPropagates() {
	fault := model.NewTransportFault(wsmtxca.OpAuthorize, "", "connection reset by peer", nil)
	suite.channel.On("Call", mock.Anything, wsmtxca.OpAuthorize, mock.Anything, mock.Anything).Return(fault).Once()

	_, err := suite.billing.CreateVoucher(suite.ctx, voucherRequest("121"))

	suite.Same(fault, err)
}

func (suite *BillingTestSuite) TestCreateVoucher_InvalidRequestSkipsCall() {
	tests := []struct {
		name   string
		mutate func(r *model.VoucherRequest)
		field  string
	}{
		{"taxed above total", func(r *model.VoucherRequest) { r.TaxedAmount = decimal.NewFromInt(200) }, "total_amount"},
		{"no items", func(r *model.VoucherRequest) { r.Items = nil }, "items"},
		{"no voucher number", func(r *model.VoucherRequest) { r.VoucherNumber = 0 }, "voucher_number"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			req := voucherRequest("100")
			tt.mutate(req)

			_, err := suite.billing.CreateVoucher(suite.ctx, req)

			var verr *model.ValidationError
			suite.Require().ErrorAs(err, &verr)
			suite.Equal(tt.field, verr.Field)
			suite.channel.AssertNotCalled(suite.T(), "Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// --- CreateNextVoucher ---

func (suite *BillingTestSuite) TestCreateNextVoucher_FirstVoucher() {
	suite.expectLast(nil, model.NewTransportFault(wsmtxca.OpLastVoucher, "602", "No existen datos en nuestros registros", nil))
	sent := suite.expectAuthorize("76123456789012", "2026-10-25")

	req := voucherRequest("121")
	req.VoucherNumber = 0
	result, err := suite.billing.CreateNextVoucher(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Equal("76123456789012", result.CAE)
	suite.Equal(int64(1), sent.Voucher.VoucherNumber)
	suite.Equal(int64(1), req.VoucherNumber)
	suite.channel.AssertExpectations(suite.T())
}

func (suite *BillingTestSuite) TestCreateNextVoucher_FollowsLast() {
	suite.expectLast(int64Ptr(41), nil)
	sent := suite.expectAuthorize("76123456789012", "2026-10-25")

	_, err := suite.billing.CreateNextVoucher(suite.ctx, voucherRequest("121"))

	suite.Require().NoError(err)
	suite.Equal(int64(42), sent.Voucher.VoucherNumber)
	suite.channel.AssertExpectations(suite.T())
}

func (suite *BillingTestSuite) TestCreateNextVoucher_LastFailureStops() {
	fault := model.NewTransportFault(wsmtxca.OpLastVoucher, "500", "Internal error", nil)
	suite.expectLast(nil, fault)

	_, err := suite.billing.CreateNextVoucher(suite.ctx, voucherRequest("121"))

	suite.Same(fault, err)
	suite.channel.AssertNotCalled(suite.T(), "Call", mock.Anything, wsmtxca.OpAuthorize, mock.Anything, mock.Anything)
}

// --- GetVoucherInfo ---

func (suite *BillingTestSuite) TestGetVoucherInfo_Found() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpVoucherInfo, mock.MatchedBy(func(r *wsmtxca.VoucherInfoRequest) bool {
		return r.Query.VoucherNumber == 42 && r.Query.SalesPoint == 4 && r.Query.VoucherType == model.VoucherTypeInvoiceB
	}), mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.VoucherInfoResponse)
			resp.Voucher = &wsmtxca.StoredVoucher{
				VoucherType:   model.VoucherTypeInvoiceB,
				SalesPoint:    4,
				VoucherNumber: 42,
				IssueDate:     "2026-10-15",
				TotalAmount:   decimal.NewFromInt(121),
				CAE:           "76123456789012",
				CAEExpiry:     "2026-10-25",
				VAT:           []wsmtxca.ResponseVATSubtotal{{Code: 5, Amount: decimal.NewFromInt(21)}},
				Items:         []wsmtxca.ResponseItem{{Code: "rma", Amount: decimal.NewFromInt(121)}},
			}
		}).
		Return(nil).Once()

	info, found, err := suite.billing.GetVoucherInfo(suite.ctx, 42, 4, model.VoucherTypeInvoiceB)

	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(int64(42), info.VoucherNumber)
	suite.Equal("76123456789012", info.CAE)
	suite.True(info.TotalAmount.Equal(decimal.NewFromInt(121)))
	suite.Require().Len(info.VAT, 1)
	suite.Equal(5, info.VAT[0].Code)
	suite.Require().Len(info.Items, 1)
	suite.Equal("rma", info.Items[0].Code)
}

func (suite *BillingTestSuite) TestGetVoucherInfo_NotFound() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpVoucherInfo, mock.Anything, mock.Anything).
		Return(model.NewTransportFault(wsmtxca.OpVoucherInfo, "soap:Server", "602: No existen datos en nuestros registros", nil)).Once()

	info, found, err := suite.billing.GetVoucherInfo(suite.ctx, 9999, 4, model.VoucherTypeInvoiceB)

	suite.Require().NoError(err)
	suite.False(found)
	suite.Nil(info)
}

func (suite *BillingTestSuite) TestGetVoucherInfo_OtherFaultPropagates() {
	fault := model.NewTransportFault(wsmtxca.OpVoucherInfo, "", "timeout", nil)
	suite.channel.On("Call", mock.Anything, wsmtxca.OpVoucherInfo, mock.Anything, mock.Anything).Return(fault).Once()

	_, found, err := suite.billing.GetVoucherInfo(suite.ctx, 1, 4, model.VoucherTypeInvoiceB)

	suite.Same(fault, err)
	suite.False(found)
}

// --- GetServerStatus ---

func (suite *BillingTestSuite) TestGetServerStatus_Unauthenticated() {
	suite.channel.On("Call", mock.Anything, wsmtxca.OpDummy, mock.AnythingOfType("*wsmtxca.DummyRequest"), mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.DummyResponse)
			resp.AppServer = "OK"
			resp.DbServer = "OK"
			resp.AuthServer = "OK"
		}).
		Return(nil).Once()

	status, err := suite.billing.GetServerStatus(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(&model.ServerStatus{AppServer: "OK", DbServer: "OK", AuthServer: "OK"}, status)
	suite.provider.AssertNotCalled(suite.T(), "Ticket", mock.Anything, mock.Anything)
}

func (suite *BillingTestSuite) TestFormatDate() {
	got, err := suite.billing.FormatDate("20230115")
	suite.Require().NoError(err)
	suite.Equal("2023-01-15", got)
}
