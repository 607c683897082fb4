package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/reviewlens/internal/model"
	"github.com/ppiankov/reviewlens/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags
var Version = "v0.1.0"

var (
	cfgFile     string
	verbose     bool
	logFormat   string
	metricsAddr string

	stopMetrics context.CancelFunc = func() {}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reviewlens",
	Short: "reviewlens - restaurant review scraper, classifier and exporter",
	Long: `reviewlens collects customer reviews for one restaurant from Google Maps,
Yelp and TripAdvisor, normalizes them into one record shape, assigns each
review a topic category and a sentiment label, and exports the results to
CSV, a multi-sheet spreadsheet and a Markdown report.

Classification is deterministic and keyword driven: the same text and
lexicon always produce the same labels.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		observability.SetupLogger(observability.LogOptions{
			Format:  logFormat,
			Verbose: verbose,
		})

		if metricsAddr != "" {
			ctx, cancel := context.WithCancel(context.Background())
			stopMetrics = cancel
			observability.Serve(ctx, metricsAddr, observability.InitRegistry())
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopMetrics()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of reviewlens.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reviewlens %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reviewlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json (default: console on a terminal)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running (e.g. :9090)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in a .env file, the config file and ENV variables
func initConfig() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".reviewlens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match REVIEWLENS_* (REVIEWLENS_HTTP_TIMEOUT → http.timeout)
	viper.SetEnvPrefix("REVIEWLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	log.Debug().Str("file", viper.ConfigFileUsed()).Msg("configuration loaded")
	return cfg, nil
}
