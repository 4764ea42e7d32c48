// Package wsaa supplies access tickets issued by the AFIP authentication
// service (WSAA) to the billing client.
//
// A ticket is requested by signing a login ticket request (TRA) and
// sending it to the loginCms operation. Signing and the loginCms call are
// delegated to an Issuer; this package builds the TRA, parses the
// returned ticket and reuses it until it expires.
package wsaa

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// Provider supplies a valid access ticket for a remote service
type Provider interface {
	Ticket(ctx context.Context, service string) (*model.AuthTicket, error)
}

// Issuer obtains a fresh ticket from the authentication service. It signs
// the given TRA and returns the raw loginTicketResponse document.
type Issuer interface {
	LoginCMS(ctx context.Context, service string, tra []byte) ([]byte, error)
}

// TicketProvider reuses stored tickets until they expire and asks the
// Issuer for a new one afterwards. Without an Issuer it only serves
// tickets already present in the Store.
type TicketProvider struct {
	taxID  int64
	store  Store
	issuer Issuer
	cache  *ticketCache
	margin time.Duration
	now    func() time.Time
	logger *zap.Logger

	// serializes issuance so concurrent callers share one login
	mu sync.Mutex
}

// ProviderOption configures a TicketProvider
type ProviderOption func(*TicketProvider)

// WithIssuer sets the issuer used when no valid ticket is stored
func WithIssuer(issuer Issuer) ProviderOption {
	return func(p *TicketProvider) {
		p.issuer = issuer
	}
}

// WithRefreshMargin treats tickets as expired d before their expiration
func WithRefreshMargin(d time.Duration) ProviderOption {
	return func(p *TicketProvider) {
		p.margin = d
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ProviderOption {
	return func(p *TicketProvider) {
		p.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *TicketProvider) {
		p.logger = logger
	}
}

// NewTicketProvider creates a provider for tickets representing taxID
func NewTicketProvider(taxID int64, store Store, opts ...ProviderOption) *TicketProvider {
	p := &TicketProvider{
		taxID:  taxID,
		store:  store,
		cache:  newTicketCache(),
		now:    time.Now,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ticket returns a valid ticket for service
func (p *TicketProvider) Ticket(ctx context.Context, service string) (*model.AuthTicket, error) {
	if ticket, ok := p.cache.get(service, p.deadline()); ok {
		return ticket, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket, ok := p.cache.get(service, p.deadline()); ok {
		return ticket, nil
	}

	ticket, err := p.loadStored(ctx, service)
	if err != nil {
		return nil, err
	}
	if ticket != nil {
		p.cache.set(service, ticket)
		return ticket, nil
	}

	if p.issuer == nil {
		return nil, model.NewAuthError(service, "no valid ticket available and no issuer configured", nil)
	}

	ticket, err = p.issue(ctx, service)
	if err != nil {
		return nil, err
	}
	p.cache.set(service, ticket)
	return ticket, nil
}

func (p *TicketProvider) deadline() time.Time {
	return p.now().Add(p.margin)
}

func (p *TicketProvider) loadStored(ctx context.Context, service string) (*model.AuthTicket, error) {
	if p.store == nil {
		return nil, nil
	}

	raw, err := p.store.Load(ctx, service)
	if errors.Is(err, ErrTicketNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewAuthError(service, "failed to load stored ticket", err)
	}

	ticket, err := ParseTicket(raw, p.taxID)
	if err != nil {
		p.logger.Warn("discarding unreadable stored ticket",
			zap.String("service", service), zap.Error(err))
		return nil, nil
	}

	if ticket.Expired(p.deadline()) {
		p.logger.Debug("stored ticket expired",
			zap.String("service", service), zap.Time("expiry", ticket.Expiry))
		return nil, nil
	}

	return ticket, nil
}

func (p *TicketProvider) issue(ctx context.Context, service string) (*model.AuthTicket, error) {
	tra, err := BuildTRA(service, p.now())
	if err != nil {
		return nil, model.NewAuthError(service, "failed to build login ticket request", err)
	}

	raw, err := p.issuer.LoginCMS(ctx, service, tra)
	if err != nil {
		return nil, model.NewAuthError(service, "login failed", err)
	}

	ticket, err := ParseTicket(raw, p.taxID)
	if err != nil {
		return nil, model.NewAuthError(service, "invalid ticket issued", err)
	}

	if p.store != nil {
		if err := p.store.Save(ctx, service, raw, ticket.Expiry); err != nil {
			return nil, model.NewAuthError(service, "failed to store ticket", err)
		}
	}

	p.logger.Info("issued access ticket",
		zap.String("service", service), zap.Time("expiry", ticket.Expiry))

	return ticket, nil
}

// StaticProvider serves one pre-issued ticket for every service
type StaticProvider struct {
	ticket model.AuthTicket
	now    func() time.Time
}

// NewStaticProvider creates a provider returning ticket until it expires
func NewStaticProvider(ticket model.AuthTicket) *StaticProvider {
	return &StaticProvider{ticket: ticket, now: time.Now}
}

// Ticket returns the configured ticket
func (p *StaticProvider) Ticket(_ context.Context, service string) (*model.AuthTicket, error) {
	if p.ticket.Token == "" || p.ticket.Sign == "" {
		return nil, model.NewAuthError(service, "static ticket has no credentials", nil)
	}
	if !p.ticket.Expiry.IsZero() && p.ticket.Expired(p.now()) {
		return nil, model.NewAuthError(service, "static ticket expired", nil)
	}
	ticket := p.ticket
	return &ticket, nil
}
