package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/lineup/internal/config"
	"github.com/papapumpkin/lineup/internal/loader"
	"github.com/papapumpkin/lineup/internal/logging"
	"github.com/papapumpkin/lineup/internal/reconcile"
	"github.com/papapumpkin/lineup/internal/store"
	"github.com/papapumpkin/lineup/internal/telemetry"
	"github.com/papapumpkin/lineup/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "lineup",
	Short: "Compile festival directories and sync them into a database",
	Long: "Lineup reads an organizer directory of YAML and Markdown files, validates it, " +
		"and reconciles it into a SQLite or Postgres database under stable IDs.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.New().Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .lineup.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("db", "", "database DSN, a file path for sqlite (default lineup.db)")
	flags.String("driver", "", "database driver: sqlite or postgres")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("database.dsn", flags.Lookup("db"))
	_ = viper.BindPFlag("database.driver", flags.Lookup("driver"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".lineup")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LINEUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// errInvalidTree is returned when a directory loads but fails validation.
var errInvalidTree = errors.New("organizer directory is invalid")

// session holds what every command needs once configuration is loaded.
type session struct {
	cfg     config.Config
	fs      afero.Fs
	logger  *slog.Logger
	printer *ui.Printer
	emitter *telemetry.Emitter

	closeLog func() error
}

func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	s := &session{
		cfg:      cfg,
		fs:       afero.NewOsFs(),
		logger:   logger,
		printer:  ui.New(),
		closeLog: closeLog,
	}
	if cfg.Telemetry.Path != "" {
		em, err := telemetry.NewEmitter(cfg.Telemetry.Path)
		if err != nil {
			_ = closeLog()
			return nil, err
		}
		s.emitter = em
	}
	return s, nil
}

func (s *session) Close() {
	if err := s.emitter.Close(); err != nil {
		s.logger.Warn("closing telemetry", "error", err)
	}
	_ = s.closeLog()
}

func (s *session) loadOptions() loader.Options {
	return loader.Options{Logger: s.logger}
}

func (s *session) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, store.Driver(s.cfg.Database.Driver), s.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("store opened", "driver", st.Driver(), "dsn", s.cfg.Database.DSN)
	return st, nil
}

func (s *session) engine(st *store.Store) *reconcile.Engine {
	return reconcile.New(st,
		reconcile.WithLogger(s.logger),
		reconcile.WithEmitter(s.emitter),
	)
}
