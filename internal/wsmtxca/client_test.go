package wsmtxca_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

func newServiceClient(channel *MockChannel) *wsmtxca.ServiceClient {
	provider := new(MockProvider)
	provider.On("Ticket", mock.Anything, wsmtxca.ServiceName).Return(testTicket(), nil)
	return wsmtxca.NewServiceClient(channel, wsmtxca.NewRequestBuilder(provider), zap.NewNop())
}

func TestServiceClient_ErrorListIsSoftFailure(t *testing.T) {
	ctx := context.Background()
	channel := new(MockChannel)
	channel.On("Call", ctx, wsmtxca.OpAuthorize, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.AuthorizeResponse)
			resp.Outcome = "R"
			resp.Errors = []wsmtxca.CodeDescription{
				{Code: "101", Description: "El campo importeTotal es invalido"},
				{Code: "102", Description: "El campo numeroComprobante es invalido"},
			}
		}).
		Return(nil).Once()

	var resp wsmtxca.AuthorizeResponse
	res, err := newServiceClient(channel).Execute(ctx, wsmtxca.OpAuthorize, &wsmtxca.AuthorizeRequest{}, &resp)
	require.NoError(t, err)

	assert.True(t, res.NoResult)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 101, res.Errors[0].Code)
	assert.Equal(t, wsmtxca.OpAuthorize, res.Errors[0].Operation)
	assert.True(t, res.Has(102))
	assert.False(t, res.Has(model.CodeNotFound))

	softErr := res.Err()
	require.Error(t, softErr)
	assert.ErrorIs(t, softErr, model.ErrNoResult)
	code, ok := model.ErrorCode(softErr)
	require.True(t, ok)
	assert.Equal(t, 101, code)

	channel.AssertExpectations(t)
}

func TestServiceClient_ParamErrorsAreSoftFailure(t *testing.T) {
	ctx := context.Background()
	channel := new(MockChannel)
	channel.On("Call", ctx, wsmtxca.OpVoucherTypes, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			resp := args.Get(3).(*wsmtxca.ParamResponse)
			resp.Result.Errors = []wsmtxca.ParamError{{Code: 600, Msg: "ValidacionDeToken: No validaron las fechas del token"}}
		}).
		Return(nil).Once()

	var resp wsmtxca.ParamResponse
	res, err := newServiceClient(channel).Execute(ctx, wsmtxca.OpVoucherTypes, &wsmtxca.ParamRequest{}, &resp)
	require.NoError(t, err)
	assert.True(t, res.NoResult)
	assert.True(t, res.Has(600))
}

func TestServiceClient_Success(t *testing.T) {
	ctx := context.Background()
	channel := new(MockChannel)
	channel.On("Call", ctx, wsmtxca.OpLastVoucher, mock.Anything, mock.Anything).Return(nil).Once()

	var resp wsmtxca.LastVoucherResponse
	res, err := newServiceClient(channel).Execute(ctx, wsmtxca.OpLastVoucher, &wsmtxca.LastVoucherRequest{}, &resp)
	require.NoError(t, err)
	assert.False(t, res.NoResult)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestServiceClient_TransportFaultPropagates(t *testing.T) {
	ctx := context.Background()
	fault := model.NewTransportFault(wsmtxca.OpLastVoucher, "ns1:coe.notAuthorized", "Computador no autorizado", nil)

	channel := new(MockChannel)
	channel.On("Call", ctx, wsmtxca.OpLastVoucher, mock.Anything, mock.Anything).Return(fault).Once()

	var resp wsmtxca.LastVoucherResponse
	res, err := newServiceClient(channel).Execute(ctx, wsmtxca.OpLastVoucher, &wsmtxca.LastVoucherRequest{}, &resp)

	assert.Same(t, fault, err)
	assert.False(t, res.NoResult)
}

func TestServiceClient_AuthFailureSkipsCall(t *testing.T) {
	ctx := context.Background()
	provider := new(MockProvider)
	provider.On("Ticket", ctx, wsmtxca.ServiceName).Return(nil, model.NewAuthError(wsmtxca.ServiceName, "expired", nil))

	channel := new(MockChannel)
	client := wsmtxca.NewServiceClient(channel, wsmtxca.NewRequestBuilder(provider), nil)

	var resp wsmtxca.LastVoucherResponse
	_, err := client.Execute(ctx, wsmtxca.OpLastVoucher, &wsmtxca.LastVoucherRequest{}, &resp)

	var authErr *model.AuthError
	require.ErrorAs(t, err, &authErr)
	channel.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResult_ErrWithoutEntries(t *testing.T) {
	res := wsmtxca.Result{NoResult: true}
	assert.ErrorIs(t, res.Err(), model.ErrNoResult)
}
