package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/config"
	"github.com/rovshanmuradov/heliox/internal/ledger"
	"github.com/rovshanmuradov/heliox/internal/logger"
	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/near/rpc"
	"github.com/rovshanmuradov/heliox/internal/session"
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/wallet"
)

// LogBufferSize is how many entries the logs screen can show.
const LogBufferSize = 2000

// Runner wires configuration, the ledger session and the UI services
// together and owns their shutdown.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	shutdown *ShutdownHandler

	client   *rpc.Client
	ledger   *ledger.Ledger
	services *ui.Services
}

// NewRunner creates a runner. logger is used until Initialize switches to
// the buffered UI logger.
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		shutdown: NewShutdownHandler(logger, DefaultShutdownTimeout),
	}
}

// Initialize builds every service the UI needs. Resources opened before a
// failure are released by Shutdown.
func (r *Runner) Initialize(ctx context.Context) error {
	cfg := r.cfg

	buffer, err := logger.NewLogBuffer(LogBufferSize, cfg.LogFile, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create log buffer: %w", err)
	}
	r.shutdown.Add("log-buffer", buffer)

	uiLogger, err := logger.CreateTUILoggerWithBuffer(cfg.DebugLogging, buffer)
	if err != nil {
		return err
	}

	journal, err := logger.NewActionJournal(cfg.JournalFile, uiLogger)
	if err != nil {
		return fmt.Errorf("failed to open action journal: %w", err)
	}
	r.shutdown.Add("journal", journal)

	network := cfg.Network()
	client, err := rpc.NewClient(network.RPCList, cfg.RPCTimeoutDuration(), uiLogger)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	r.client = client
	r.shutdown.AddFunc("rpc-client", func() error {
		client.Close()
		return nil
	})

	credentialsDir, err := wallet.CredentialsDir(cfg.CredentialsDir, cfg.NetworkID)
	if err != nil {
		return err
	}

	updates := ui.NewUpdateSender(make(chan tea.Msg, ui.DefaultBusSize), uiLogger)
	r.shutdown.AddFunc("ui-bus", func() error {
		updates.Close()
		return nil
	})

	sess := session.NewKeySession(client, session.Options{
		CredentialsDir: credentialsDir,
		AccountID:      cfg.AccountID,
		PollInterval:   cfg.PollIntervalDuration(),
		PollMaxWait:    cfg.PollTimeoutDuration(),
	}, uiLogger)
	sess.Subscribe(updates.SessionListener())

	contracts := cfg.Contracts()
	if err := contracts.Validate(); err != nil {
		return err
	}
	r.ledger = ledger.New(sess, contracts)

	actions := market.NewActions(r.ledger, sess, market.ActionsConfig{
		Contracts:     contracts,
		ShareDecimals: cfg.ShareDecimals,
		Quote:         cfg.Quote(),
	}, journal, uiLogger)

	r.services = &ui.Services{
		Context:   ctx,
		Session:   sess,
		Vehicle:   market.NewVehicleLoader(r.ledger, sess, cfg.TokenID),
		Market:    market.NewMarketLoader(r.ledger, sess),
		Actions:   actions,
		Config:    cfg,
		Logger:    uiLogger,
		LogBuffer: buffer,
		Updates:   updates,
	}
	r.logger = uiLogger

	uiLogger.Info("HelioX initialized",
		zap.String("network", cfg.NetworkID),
		zap.Strings("rpc", network.RPCList),
		zap.String("credentials", credentialsDir))
	return nil
}

// CheckDeployment logs the node and compares the market's configured
// tokens with ours. Nothing here is fatal.
func (r *Runner) CheckDeployment(ctx context.Context) {
	status, err := r.client.Status(ctx)
	if err != nil {
		r.logger.Warn("RPC node unreachable", zap.Error(err))
	} else {
		r.logger.Info("Connected to NEAR",
			zap.String("chain_id", status.ChainID),
			zap.Uint64("height", status.SyncInfo.LatestBlockHeight))
	}

	contracts := r.ledger.Contracts()
	mc, err := r.ledger.MarketConfig(ctx)
	if err != nil {
		r.logger.Warn("Failed to read market config", zap.Error(err))
		return
	}
	if mc.VehicleFT != contracts.FT || mc.USDT != contracts.USDT {
		r.logger.Warn("Market config does not match configured contracts",
			zap.String("market_ft", mc.VehicleFT),
			zap.String("configured_ft", contracts.FT),
			zap.String("market_usdt", mc.USDT),
			zap.String("configured_usdt", contracts.USDT))
	}
}

// Services returns what the UI screens use. Valid after Initialize.
func (r *Runner) Services() *ui.Services {
	return r.services
}

// Logger is the logger currently in use.
func (r *Runner) Logger() *zap.Logger {
	return r.logger
}

// Shutdown releases everything Initialize opened.
func (r *Runner) Shutdown(ctx context.Context) error {
	return r.shutdown.Shutdown(ctx)
}
