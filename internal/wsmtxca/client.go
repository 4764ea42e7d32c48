package wsmtxca

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/soap"
)

// Response is a reply that may carry an application error list
type Response interface {
	Failures(operation string) []*model.ApplicationError
}

// Result is the outcome of a call that reached the service.
// NoResult is set when the service answered with an error list.
type Result struct {
	NoResult bool
	Errors   []*model.ApplicationError
}

// Err turns a soft failure into an error wrapping model.ErrNoResult and the
// returned application errors. It is nil for a successful call.
func (r Result) Err() error {
	if !r.NoResult {
		return nil
	}
	if len(r.Errors) == 0 {
		return model.ErrNoResult
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return fmt.Errorf("%w: %w", model.ErrNoResult, errors.Join(errs...))
}

// Has reports whether the error list contains code
func (r Result) Has(code int) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ServiceClient performs authenticated calls over a channel
type ServiceClient struct {
	channel soap.Channel
	builder *RequestBuilder
	logger  *zap.Logger
}

// NewServiceClient creates a client
func NewServiceClient(channel soap.Channel, builder *RequestBuilder, logger *zap.Logger) *ServiceClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceClient{
		channel: channel,
		builder: builder,
		logger:  logger,
	}
}

// Execute builds the request for operation, performs the call and decodes
// the reply into response.
//
// Transport faults and credential failures are returned as errors. A reply
// carrying an error list is not an error: it yields a Result with NoResult
// set and the decoded application errors.
func (c *ServiceClient) Execute(ctx context.Context, operation string, params, response any) (Result, error) {
	req, err := c.builder.Build(ctx, operation, params)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	err = c.channel.Call(ctx, operation, req, response)
	elapsed := time.Since(start)

	if err != nil {
		c.logger.Debug("call failed",
			zap.String("operation", operation),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return Result{}, err
	}

	c.logger.Debug("call completed",
		zap.String("operation", operation),
		zap.Duration("duration", elapsed))

	r, ok := response.(Response)
	if !ok {
		return Result{}, nil
	}

	failures := r.Failures(operation)
	if len(failures) == 0 {
		return Result{}, nil
	}

	for _, f := range failures {
		c.logger.Warn("service returned error",
			zap.String("operation", operation),
			zap.Int("code", f.Code),
			zap.String("message", f.Message))
	}

	return Result{NoResult: true, Errors: failures}, nil
}
