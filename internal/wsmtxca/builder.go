package wsmtxca

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsaa"
)

// Authenticatable is a request that carries credentials
type Authenticatable interface {
	Credentials() *AuthRequest
	SetCredentials(*AuthRequest)
}

// RequestBuilder attaches the current access ticket to outgoing requests
type RequestBuilder struct {
	provider wsaa.Provider
}

// NewRequestBuilder creates a builder reading tickets from provider
func NewRequestBuilder(provider wsaa.Provider) *RequestBuilder {
	return &RequestBuilder{provider: provider}
}

// Build prepares params for operation. The health check is returned as
// is; every other request gets the ticket for this service merged into its
// credentials, keeping the fields the caller already set.
func (b *RequestBuilder) Build(ctx context.Context, operation string, params any) (any, error) {
	if operation == OpDummy {
		return params, nil
	}

	req, ok := params.(Authenticatable)
	if !ok {
		return nil, fmt.Errorf("wsmtxca: %s request %T cannot carry credentials", operation, params)
	}

	if b.provider == nil {
		return nil, model.NewAuthError(ServiceName, "no ticket provider configured", nil)
	}

	ticket, err := b.provider.Ticket(ctx, ServiceName)
	if err != nil {
		return nil, asAuthError(err)
	}
	if ticket == nil {
		return nil, model.NewAuthError(ServiceName, "provider returned no ticket", nil)
	}

	req.SetCredentials(mergeCredentials(&AuthRequest{
		Token: ticket.Token,
		Sign:  ticket.Sign,
		CUIT:  ticket.RepresentedTaxID,
	}, req.Credentials()))

	return req, nil
}

// mergeCredentials overlays the non-empty fields of caller on injected
func mergeCredentials(injected, caller *AuthRequest) *AuthRequest {
	if caller == nil {
		return injected
	}
	merged := *injected
	if caller.Token != "" {
		merged.Token = caller.Token
	}
	if caller.Sign != "" {
		merged.Sign = caller.Sign
	}
	if caller.CUIT != 0 {
		merged.CUIT = caller.CUIT
	}
	return &merged
}

func asAuthError(err error) error {
	var authErr *model.AuthError
	if errors.As(err, &authErr) {
		return err
	}
	return model.NewAuthError(ServiceName, "failed to obtain access ticket", err)
}
