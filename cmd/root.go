package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

// AppContext carries what every command needs after flag and config parsing.
type AppContext struct {
	Logger     *zap.SugaredLogger
	ResultsDir string
	Config     *CLIConfig
}

type appContextKey struct{}

var globalAppContext *AppContext

var rootCmd = &cobra.Command{
	Use:   "srvdiag",
	Short: "Diagnose why a web application on this host is unreachable",
	Long: `srvdiag inspects the local server hosting a web application:
the host IP, whether the application port is listening, the reverse proxy
service, a local HTTP request, and the firewall state.

Running srvdiag with no subcommand performs the diagnostic.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initAppContext,
	RunE:              runDiagnose,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.srvdiag.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each command to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	addCheckFlags(rootCmd.Flags())
	addOutputFlags(rootCmd.Flags())

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initAppContext(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	if err := loadDotEnv(".env"); err != nil {
		return err
	}
	if err := loadConfigFile(); err != nil {
		return err
	}
	applyConfigDefaults(cmd)

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	resultsDir := cliConfig.ResultsDir
	if abs, err := filepath.Abs(resultsDir); err == nil {
		resultsDir = abs
	}

	logger.Debugf("config_file=%s results_dir=%s", viper.ConfigFileUsed(), resultsDir)

	storeAppContext(cmd, &AppContext{
		Logger:     logger,
		ResultsDir: resultsDir,
		Config:     cliConfig,
	})
	return nil
}

// loadDotEnv populates the environment from path when the file exists.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func loadConfigFile() error {
	viper.SetEnvPrefix("SRVDIAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return nil
	}

	viper.AddConfigPath("$HOME")
	viper.SetConfigName(".srvdiag")
	viper.SetConfigType("yaml")

	// A missing default config is fine.
	_ = viper.ReadInConfig()
	return nil
}

// newLogger builds a stderr logger so stdout only carries the report.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func storeAppContext(cmd *cobra.Command, appCtx *AppContext) {
	globalAppContext = appCtx
	cmd.SetContext(context.WithValue(commandContext(cmd), appContextKey{}, appCtx))
}

func getAppContext(cmd *cobra.Command) *AppContext {
	if cmd != nil {
		if ctx := cmd.Context(); ctx != nil {
			if appCtx, ok := ctx.Value(appContextKey{}).(*AppContext); ok && appCtx != nil {
				return appCtx
			}
		}
	}
	if globalAppContext != nil {
		return globalAppContext
	}
	return &AppContext{
		Logger:     zap.NewNop().Sugar(),
		ResultsDir: cliConfig.ResultsDir,
		Config:     cliConfig,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
