package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/client"
	"github.com/spec-kit/inventory-service/internal/config"
)

// env is the state shared by every subcommand once flags are parsed.
type env struct {
	cfg   config.ClientConfig
	store client.Store
	api   *client.API
	log   *zap.Logger
}

type options struct {
	baseURL   string
	stateFile string
	timeout   time.Duration
	verbose   bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		opts options
		e    = &env{}
	)

	rootCmd := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Command-line client for the inventory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "base-url", "", "inventory API base URL (default $CLIENT_BASE_URL)")
	flags.StringVar(&opts.stateFile, "state", "", "session and offline queue file (default $CLIENT_STATE_FILE)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default $CLIENT_TIMEOUT_SECONDS)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log client activity to stderr")

	rootCmd.AddCommand(
		newLoginCommand(e),
		newLogoutCommand(e),
		newWhoamiCommand(e),
		newMovementCommand(e, client.KindCheckIn),
		newMovementCommand(e, client.KindCheckOut),
		newMineCommand(e),
		newSyncCommand(e),
		newQueueCommand(e),
		newWatchCommand(e),
	)

	return rootCmd
}

func (e *env) init(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	e.cfg = cfg.Client
	if opts.baseURL != "" {
		e.cfg.BaseURL = opts.baseURL
	}
	if opts.stateFile != "" {
		e.cfg.StateFile = opts.stateFile
	}
	timeout := e.cfg.Timeout()
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	e.log = zap.NewNop()
	if opts.verbose {
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.OutputPaths = []string{"stderr"}
		if e.log, err = zapCfg.Build(); err != nil {
			return err
		}
	}

	out := cmd.ErrOrStderr()
	e.store = client.NewFileStore(e.cfg.StateFile)
	c := client.New(e.cfg.BaseURL, e.store, client.Options{
		Timeout: timeout,
		Logger:  e.log,
		OnSessionEnded: func() {
			fmt.Fprintln(out, "session ended, please log in again")
		},
	})
	e.api = client.NewAPI(c, e.store, client.QueueOptions{
		MaxAttempts: e.cfg.QueueMaxAttempts,
		Logger:      e.log,
	})
	return nil
}

// require checks for a stored session whose role may use capability. The
// API enforces the same table; this only avoids a pointless round trip.
func (e *env) require(capability auth.Capability) error {
	identity, ok := e.api.Client().Session().Identity()
	if !ok {
		return errors.New("not logged in; run inventoryctl login")
	}
	if !auth.Can(identity.Role, capability) {
		return fmt.Errorf("role %s may not use %s", identity.Role, capability)
	}
	return nil
}
