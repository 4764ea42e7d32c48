package wsmtxca_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// --- Mock Channel ---
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Call(ctx context.Context, operation string, request, response any) error {
	args := m.Called(ctx, operation, request, response)
	return args.Error(0)
}

// --- Mock Provider ---
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Ticket(ctx context.Context, service string) (*model.AuthTicket, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthTicket), args.Error(1)
}

const testCUIT int64 = 20111111112

func testTicket() *model.AuthTicket {
	return &model.AuthTicket{
		Token:            "PD94bWwgdmVyc2lvbj0iMS4wIj8+",
		Sign:             "c2lnbmF0dXJl",
		RepresentedTaxID: testCUIT,
		Expiry:           time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC),
	}
}
