package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/logging"
	"github.com/rezonia/wsmtxca-client/internal/model"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

// Billing is the part of the billing client exposed over HTTP
type Billing interface {
	GetLastVoucher(ctx context.Context, salesPoint, voucherType int) (int64, bool, error)
	CreateVoucher(ctx context.Context, req *model.VoucherRequest) (*model.VoucherResult, error)
	CreateVoucherRaw(ctx context.Context, req *model.VoucherRequest) (*wsmtxca.AuthorizeResponse, error)
	CreateNextVoucher(ctx context.Context, req *model.VoucherRequest) (*model.VoucherResult, error)
	GetVoucherInfo(ctx context.Context, number int64, salesPoint, voucherType int) (*model.VoucherInfo, bool, error)
	GetServerStatus(ctx context.Context) (*model.ServerStatus, error)
	Catalog(ctx context.Context, table string) ([]model.CatalogEntry, error)
}

// Config holds server configuration
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	Debug          bool
	Logger         *zap.Logger
}

// Server represents the HTTP API server
type Server struct {
	config  *Config
	router  *gin.Engine
	billing Billing
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(config *Config, billing Billing) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinMiddleware(logger))

	s := &Server{
		config:  config,
		router:  router,
		billing: billing,
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)

		v1.GET("/vouchers/last", s.handleLastVoucher)
		v1.POST("/vouchers", s.handleCreateVoucher)
		v1.POST("/vouchers/next", s.handleCreateNextVoucher)
		v1.GET("/vouchers/:type/:sales_point/:number", s.handleVoucherInfo)

		v1.GET("/params", s.handleTables)
		v1.GET("/params/:table", s.handleTable)
	}
}

// HTTPServer returns an http.Server serving the API with the configured timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	status, err := s.billing.GetServerStatus(ctx)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleLastVoucher(c *gin.Context) {
	salesPoint, err := strconv.Atoi(c.Query("sales_point"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sales_point"})
		return
	}
	voucherType, err := strconv.Atoi(c.Query("voucher_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid voucher_type"})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	number, found, err := s.billing.GetLastVoucher(ctx, salesPoint, voucherType)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, LastVoucherResponse{
		SalesPoint:    salesPoint,
		VoucherType:   voucherType,
		VoucherNumber: number,
		Found:         found,
	})
}

func (s *Server) handleCreateVoucher(c *gin.Context) {
	var req model.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	if c.Query("full") == "true" {
		resp, err := s.billing.CreateVoucherRaw(ctx, &req)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	result, err := s.billing.CreateVoucher(ctx, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newVoucherResponse(&req, result))
}

func (s *Server) handleCreateNextVoucher(c *gin.Context) {
	var req model.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	result, err := s.billing.CreateNextVoucher(ctx, &req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newVoucherResponse(&req, result))
}

func (s *Server) handleVoucherInfo(c *gin.Context) {
	voucherType, err1 := strconv.Atoi(c.Param("type"))
	salesPoint, err2 := strconv.Atoi(c.Param("sales_point"))
	number, err3 := strconv.ParseInt(c.Param("number"), 10, 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid voucher reference", Details: err.Error()})
		return
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	info, found, err := s.billing.GetVoucherInfo(ctx, number, salesPoint, voucherType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "voucher not found"})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (s *Server) handleTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": wsmtxca.Tables()})
}

func (s *Server) handleTable(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	entries, err := s.billing.Catalog(ctx, c.Param("table"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, TableResponse{Table: c.Param("table"), Entries: entries})
}

// writeError maps client errors onto HTTP statuses
func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		validationErr *model.ValidationError
		authErr       *model.AuthError
		appErr        *model.ApplicationError
		fault         *model.TransportFault
	)

	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, wsmtxca.ErrUnknownTable):
		status = http.StatusNotFound
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &appErr):
		status = http.StatusUnprocessableEntity
		resp.Code = appErr.Code
	case errors.Is(err, model.ErrNoResult), errors.Is(err, model.ErrMissingField):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &fault):
		status = http.StatusBadGateway
		if code, ok := model.ErrorCode(err); ok {
			resp.Code = code
		}
	}

	c.JSON(status, resp)
}
