package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/wsmtxca-client/internal/config"
	"github.com/rezonia/wsmtxca-client/internal/logging"
	"github.com/rezonia/wsmtxca-client/internal/soap"
	"github.com/rezonia/wsmtxca-client/internal/wsaa"
	"github.com/rezonia/wsmtxca-client/internal/wsmtxca"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	envFile      string
	cuit         int64
	production   bool
	endpoint     string
	ticketDir    string
	redisAddr    string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wsmtxca",
	Short: "AFIP electronic billing with line items (WSMTXCA)",
	Long: `wsmtxca authorizes vouchers with line items against the AFIP WSMTXCA
service and queries its reference tables.

Access tickets are read from TA-wsmtxca.xml in the ticket directory (or from
Redis) and must be issued beforehand by the authentication service.

Examples:
  # Check the service status
  wsmtxca status

  # Last authorized Factura B at sales point 4
  wsmtxca last --sales-point 4 --type 6

  # Authorize the next voucher described in voucher.json
  wsmtxca next voucher.json

  # List currencies
  wsmtxca params currencies`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file")
	rootCmd.PersistentFlags().Int64Var(&cuit, "cuit", 0, "Represented tax ID (env: AFIP_CUIT)")
	rootCmd.PersistentFlags().BoolVar(&production, "production", false, "Use the production service (env: AFIP_PRODUCTION)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Service endpoint override (env: AFIP_WSDL_URL)")
	rootCmd.PersistentFlags().StringVar(&ticketDir, "ta-dir", "", "Directory holding TA-<service>.xml tickets (env: AFIP_TA_DIR)")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address for tickets (env: AFIP_REDIS_ADDR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Call timeout (env: AFIP_TIMEOUT)")
}

// loadConfig reads the environment and applies the flags set on cmd
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("cuit") {
		cfg.CUIT = cuit
	}
	if flags.Changed("production") {
		cfg.Production = production
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}
	if flags.Changed("ta-dir") {
		cfg.TicketDir = ticketDir
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Production {
		logCfg = logging.ProductionConfig()
	}
	if cfg.LogLevel != "" {
		logCfg.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	return logging.New(logCfg)
}

// newBilling wires a billing client from the configuration. The returned
// func releases the ticket store.
func newBilling(cmd *cobra.Command) (*wsmtxca.Billing, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var store wsaa.Store
	cleanup := func() { _ = logger.Sync() }
	if cfg.RedisAddr != "" {
		rs, err := wsaa.NewRedisStore(wsaa.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store = rs
		cleanup = func() {
			_ = rs.Close()
			_ = logger.Sync()
		}
	} else {
		store = wsaa.NewFileStore(cfg.TicketDir)
	}

	provider := wsaa.NewTicketProvider(cfg.CUIT, store, wsaa.WithLogger(logger))
	channel := soap.NewClient(cfg.ServiceURL(),
		soap.WithTimeout(cfg.Timeout),
		soap.WithActionPrefix(wsmtxca.Namespace))

	logger.Debug("billing client ready",
		zap.String("endpoint", cfg.ServiceURL()),
		zap.Int64("cuit", cfg.CUIT))

	return wsmtxca.New(channel, provider, wsmtxca.WithLogger(logger)), cfg, cleanup, nil
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func output(v any, table func(w io.Writer) error) error {
	switch outputFormat {
	case "json":
		return outputJSON(os.Stdout, v)
	case "table":
		return table(os.Stdout)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
