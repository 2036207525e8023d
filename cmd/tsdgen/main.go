// Command tsdgen generates TypeScript declaration files from Go type graphs
// and from database-backed enum tables.
package main

import (
	"fmt"
	"os"

	goversion "github.com/caarlos0/go-version"
	crdberrors "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/origadmin/tsdgen/internal/config"
	"github.com/origadmin/tsdgen/internal/dbenum"
	"github.com/origadmin/tsdgen/internal/emit"
	"github.com/origadmin/tsdgen/internal/metadata"
)

const (
	application = "tsdgen"
	description = "TypeScript declaration generator for Go type graphs and database enums"
	website     = "https://github.com/origadmin/tsdgen"
)

var (
	version   = "0.0.1"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

var (
	flagConfig   string
	flagOutput   string
	flagDatabase string
	flagJSON     bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:           application,
	Short:         description,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildVersion().String())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "tsdgen.toml", "Path to the configuration file")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Override the configured output directory")
	rootCmd.Flags().StringVar(&flagDatabase, "database", "", "Override the configured database path")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Emit JSON logs")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.LoadFromFile(flagConfig)
	if err != nil {
		return err
	}
	if flagOutput != "" {
		cfg.OutputDir = flagOutput
	}
	if flagDatabase != "" {
		cfg.DatabasePath = flagDatabase
	}

	ctx := cmd.Context()
	provider := metadata.NewProvider(logger)
	emitter := emit.New(cfg, provider, logger)

	summary, err := emitter.Run(ctx)
	if err != nil {
		return err
	}

	if len(cfg.EnumSources) > 0 {
		db, err := dbenum.Open(cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		enumSummary, err := emitter.RunDatabaseEnums(ctx, db)
		if err != nil {
			return err
		}
		summary.Enums += enumSummary.Enums
	}

	logger.Infow("generation complete",
		"interfaces", summary.Interfaces,
		"enums", summary.Enums,
		"output", cfg.OutputDir,
	)
	return nil
}

func newLogger() (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if flagJSON {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if flagDebug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func buildVersion() goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails(application, description, website),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", application, err)
		if cause := crdberrors.UnwrapOnce(err); cause != nil {
			fmt.Fprintf(os.Stderr, "  caused by: %v\n", cause)
		}
		os.Exit(1)
	}
}
