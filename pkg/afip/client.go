package afip

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/soap"
	"github.com/rezonia/wsmtxca-client/internal/wsaa"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

// ClientOptions configures a Client
type ClientOptions struct {
	// Represented taxpayer
	CUIT int64

	// Endpoint
	Production bool   // Use the production service (default: homologation)
	Endpoint   string // Overrides the service URL when set
	Timeout    time.Duration

	// Ticket storage. Redis is used when RedisAddr is set.
	TicketDir     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Provider replaces the stored-ticket provider entirely
	Provider TicketProvider
	// Issuer obtains new tickets once the stored one expires
	Issuer TicketIssuer

	Logger *zap.Logger
}

// DefaultClientOptions returns default options for the taxpayer cuit
func DefaultClientOptions(cuit int64) ClientOptions {
	return ClientOptions{
		CUIT:      cuit,
		Timeout:   soap.DefaultTimeout,
		TicketDir: "resources",
	}
}

// Client is the voucher billing client
type Client struct {
	*wsmtxca.Billing
	closers []func() error
}

// NewClient creates a client from opts
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Provider == nil && opts.CUIT <= 0 {
		return nil, errors.New("afip: CUIT is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{}

	provider := opts.Provider
	if provider == nil {
		var store wsaa.Store
		if opts.RedisAddr != "" {
			rs, err := wsaa.NewRedisStore(wsaa.RedisConfig{
				Addr:     opts.RedisAddr,
				Password: opts.RedisPassword,
				DB:       opts.RedisDB,
			})
			if err != nil {
				return nil, err
			}
			c.closers = append(c.closers, rs.Close)
			store = rs
		} else {
			store = wsaa.NewFileStore(opts.TicketDir)
		}

		providerOpts := []wsaa.ProviderOption{wsaa.WithLogger(logger)}
		if opts.Issuer != nil {
			providerOpts = append(providerOpts, wsaa.WithIssuer(opts.Issuer))
		}
		provider = wsaa.NewTicketProvider(opts.CUIT, store, providerOpts...)
	}

	var soapOpts []soap.ClientOption
	if opts.Timeout > 0 {
		soapOpts = append(soapOpts, soap.WithTimeout(opts.Timeout))
	}
	soapOpts = append(soapOpts, soap.WithActionPrefix(wsmtxca.Namespace))

	channel := soap.NewClient(serviceURL(opts), soapOpts...)
	c.Billing = wsmtxca.New(channel, provider, wsmtxca.WithLogger(logger))

	return c, nil
}

// Close releases the ticket store connections
func (c *Client) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func serviceURL(opts ClientOptions) string {
	switch {
	case opts.Endpoint != "":
		return opts.Endpoint
	case opts.Production:
		return wsmtxca.ProductionURL
	default:
		return wsmtxca.HomologationURL
	}
}
