package soap

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	gosoap "github.com/hooklift/gowsdl/soap"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// DefaultTimeout bounds a call when no timeout option is given
const DefaultTimeout = 60 * time.Second

// Channel performs one named remote operation. The request is encoded as
// the body of the call and the reply decoded into response.
type Channel interface {
	Call(ctx context.Context, operation string, request, response any) error
}

// Client is a Channel speaking SOAP over HTTP
type Client struct {
	client       *gosoap.Client
	actionPrefix string
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout      time.Duration
	httpClient   *http.Client
	actionPrefix string
}

// WithTimeout sets custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.timeout = timeout
	}
}

// WithHTTPClient sets the HTTP client used for calls
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.httpClient = c
	}
}

// WithActionPrefix sets the prefix joined with the operation name to build
// the SOAPAction header
func WithActionPrefix(prefix string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.actionPrefix = prefix
	}
}

// NewClient creates a SOAP client for the service at url
func NewClient(url string, opts ...ClientOption) *Client {
	cfg := &clientConfig{
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	soapOpts := []gosoap.Option{gosoap.WithTimeout(cfg.timeout)}
	if cfg.httpClient != nil {
		soapOpts = append(soapOpts, gosoap.WithHTTPClient(cfg.httpClient))
	}

	return &Client{
		client:       gosoap.NewClient(url, soapOpts...),
		actionPrefix: cfg.actionPrefix,
	}
}

// Call performs operation. Every failure is reported as a
// *model.TransportFault; SOAP faults keep their fault code, including
// faults sent with an HTTP error status.
func (c *Client) Call(ctx context.Context, operation string, request, response any) error {
	err := c.client.CallContext(ctx, c.actionPrefix+operation, request, response)
	if err == nil {
		return nil
	}

	var fault *gosoap.SOAPFault
	if errors.As(err, &fault) {
		return model.NewTransportFault(operation, fault.Code, fault.String, err)
	}

	var httpErr *gosoap.HTTPError
	if errors.As(err, &httpErr) {
		if code, message, ok := parseFault(httpErr.ResponseBody); ok {
			return model.NewTransportFault(operation, code, message, err)
		}
	}

	return model.NewTransportFault(operation, "", err.Error(), err)
}

// parseFault reads faultcode and faultstring from a SOAP envelope
func parseFault(body []byte) (code, message string, ok bool) {
	if len(body) == 0 {
		return "", "", false
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", "", false
	}

	fault := doc.FindElement("//Fault")
	if fault == nil {
		return "", "", false
	}

	if el := fault.FindElement("faultcode"); el != nil {
		code = strings.TrimSpace(el.Text())
	}
	if el := fault.FindElement("faultstring"); el != nil {
		message = strings.TrimSpace(el.Text())
	}
	return code, message, code != "" || message != ""
}
