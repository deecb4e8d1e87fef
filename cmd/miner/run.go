package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/trigg3rX/mining-cli/internal/accounts"
	"github.com/trigg3rX/mining-cli/internal/chain"
	"github.com/trigg3rX/mining-cli/internal/circulation"
	"github.com/trigg3rX/mining-cli/internal/config"
	"github.com/trigg3rX/mining-cli/internal/console"
	"github.com/trigg3rX/mining-cli/internal/metrics"
	"github.com/trigg3rX/mining-cli/internal/mining"
	"github.com/trigg3rX/mining-cli/internal/modeloop"
	"github.com/trigg3rX/mining-cli/internal/scheduler"
	"github.com/trigg3rX/mining-cli/internal/timing"
	"github.com/trigg3rX/mining-cli/internal/update"
	httppkg "github.com/trigg3rX/mining-cli/pkg/http"
	"github.com/trigg3rX/mining-cli/pkg/logging"
)

const shutdownTimeout = 5 * time.Second

func runMiner(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !c.IsSet("mode")
	var mode modeloop.RunMode
	if !interactive {
		parsed, err := modeloop.ParseRunMode(c.String("mode"))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		mode = parsed
	}

	cfg, err := config.Load(c.String("settings"), c.String("env-file"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load config: %v", err), 1)
	}

	logConfig := logging.NewDefaultConfig(logging.MinerProcess)
	logConfig.UseColors = term.IsTerminal(int(os.Stdout.Fd()))
	if !cfg.IsDevMode() {
		logConfig.Environment = logging.Production
		logConfig.Console = true
	}
	if err := logging.InitServiceLogger(logConfig); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to initialize logger: %v", err), 1)
	}
	defer func() { _ = logging.Shutdown() }()
	logger := logging.GetServiceLogger().With("run_id", uuid.New().String())

	logger.Info("Starting miner", "version", Version, "network", cfg.Network(), "interactive", interactive)

	app, err := newMiner(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize miner", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	defer app.close()

	if addr := cfg.Settings().Metrics.Addr; addr != "" {
		server := metrics.NewServer(addr, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	loop := &modeloop.Loop{
		Actions:     app.actions(),
		Interactive: interactive,
		Logger:      logger,
	}
	if interactive {
		prompt := console.New(os.Stdin, os.Stdout, modeloop.Modes)
		prompt.Println("Press ctrl + c to stop the process")
		loop.Selector = prompt
		loop.Pauser = prompt
		if mode, err = prompt.SelectMode(); err != nil {
			if errors.Is(err, console.ErrSelectionCancelled) {
				logger.Info("No mode selected, exiting")
				return nil
			}
			return cli.Exit(err.Error(), 1)
		}
	}

	if err := loop.Run(ctx, mode); err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			logger.Info("Stopped by signal")
			return nil
		}
		if errors.Is(err, console.ErrSelectionCancelled) {
			logger.Info("No mode selected, exiting")
			return nil
		}
		logger.Error("Miner stopped with error", "error", err)
		return cli.Exit(err.Error(), 1)
	}
	logger.Info("Miner finished")
	return nil
}

// miner holds the services behind the run modes.
type miner struct {
	client  *ethclient.Client
	http    *httppkg.HTTPClient
	service *mining.Service
	status  func(ctx context.Context) (*mining.Summary, error)
	checker *update.Checker
	logger  logging.Logger
}

func newMiner(ctx context.Context, cfg *config.Config, logger logging.Logger) (*miner, error) {
	settings := cfg.Settings()

	deriver, err := accounts.NewDeriver(cfg.WithdrawalPrivateKey())
	if err != nil {
		return nil, err
	}
	if err := mining.VerifyWithdrawalAddress(deriver, cfg.WithdrawalAddress()); err != nil {
		return nil, err
	}

	client, err := chain.Dial(ctx, cfg.RPCURL(), cfg.ChainID())
	if err != nil {
		return nil, err
	}
	custodyABI, err := chain.LoadABI(cfg.CustodyABIPath())
	if err != nil {
		client.Close()
		return nil, err
	}
	custody, err := chain.NewCustody(client, cfg.CustodyAddress(), custodyABI, cfg.ChainID(), settings.Contract, cfg.RetryConfig(), logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	minCooldown, maxCooldown := cfg.CooldownRange()
	sched, err := scheduler.NewScheduler(custody, scheduler.SystemClock(), timing.Range{Min: minCooldown, Max: maxCooldown}, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	httpConfig := httppkg.DefaultHTTPRetryConfig()
	httpConfig.RetryConfig = cfg.RetryConfig()
	httpConfig.Timeout = settings.API.Timeout
	httpClient, err := httppkg.NewHTTPClient(httpConfig, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	service, err := mining.NewService(
		custody,
		custody,
		sched,
		circulation.NewClient(settings.API.CirculationServerURL, httpClient, logger),
		deriver,
		mining.Options{
			MiningUnit:  cfg.MiningUnit(),
			MiningTimes: cfg.MiningTimes(),
			MaxAccounts: settings.Contract.MaxDepositAccounts,
			ExportPath:  filepath.Join(logging.BaseDataDir, "export", cfg.Network()+"_deposit_accounts.json"),
		},
		logger,
	)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &miner{
		client:  client,
		http:    httpClient,
		service: service,
		status:  service.PrintStatus,
		checker: update.NewChecker(settings.API.GitHubAPIURL, settings.Update.ReleaseRepo, httpClient, logger),
		logger:  logger,
	}, nil
}

func (m *miner) actions() map[modeloop.RunMode]modeloop.Action {
	actions := map[modeloop.RunMode]modeloop.Action{
		modeloop.Mining:      m.service.Mining,
		modeloop.Claim:       m.service.Claim,
		modeloop.Exit:        m.service.Exit,
		modeloop.Export:      m.service.Export,
		modeloop.CheckUpdate: m.checkUpdate,
	}
	for mode, action := range actions {
		if mode.Mutates() {
			actions[mode] = m.withStatus(action)
		}
	}
	return actions
}

func (m *miner) checkUpdate(ctx context.Context) error {
	result, err := m.checker.Check(ctx, Version)
	if err != nil {
		return err
	}
	if result.UpdateAvailable {
		m.logger.Info("A new version is available", "current", result.CurrentVersion, "latest", result.LatestVersion, "url", result.ReleaseURL)
	} else {
		m.logger.Info("You are using the latest version", "version", result.CurrentVersion)
	}
	return nil
}

// withStatus prints the deposit account summary before a mutating mode.
func (m *miner) withStatus(action modeloop.Action) modeloop.Action {
	return func(ctx context.Context) error {
		if _, err := m.status(ctx); err != nil {
			return err
		}
		return action(ctx)
	}
}

func (m *miner) close() {
	m.http.Close()
	m.client.Close()
}
