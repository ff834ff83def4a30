package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papersort/papersort/internal/server"
	"github.com/papersort/papersort/internal/utils"
	"github.com/papersort/papersort/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "papersort",
	Short:   "PaperSort - triage PDFs into two folders from your browser",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := &server.Config{
			HTTP: server.HTTPConfig{
				Addr: viper.GetString("bind"),
			},
			Folders: server.FoldersConfig{
				Source: viper.GetString("source"),
				Dest1:  viper.GetString("dest1"),
				Dest2:  viper.GetString("dest2"),
			},
		}

		cmd.SilenceUsage = true
		showHeader()

		s, err := server.New(config)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		return s.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().StringP("source", "s", "", "Folder containing the PDFs to triage")
	rootCmd.Flags().String("dest1", "", "First destination folder")
	rootCmd.Flags().String("dest2", "", "Second destination folder")
	rootCmd.PersistentFlags().StringP("config", "c", "", "PaperSort config file")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
}

func main() {
	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := setupLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogger() error {
	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})

	logFile := logFileFlag()
	if logFile == "" {
		slog.SetDefault(slog.New(stdoutHandler))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))
	return nil
}

// logFileFlag pulls --log-file ahead of cobra parsing so logging is live
// from the first line.
func logFileFlag() string {
	for i, arg := range os.Args {
		if arg == "--log-file" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if after, ok := strings.CutPrefix(arg, "--log-file="); ok {
			return after
		}
	}
	return ""
}

func loadConfig(cmd *cobra.Command) error {
	// config path
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".papersort"))
		viper.AddConfigPath(filepath.Join(home, ".config/papersort"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("bind", cmd.Flags().Lookup("bind"))
	viper.BindPFlag("source", cmd.Flags().Lookup("source"))
	viper.BindPFlag("dest1", cmd.Flags().Lookup("dest1"))
	viper.BindPFlag("dest2", cmd.Flags().Lookup("dest2"))

	// Set up environment variables
	viper.SetEnvPrefix("PAPERSORT")
	viper.AutomaticEnv()

	return nil
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).
		Print(utils.PaperSortArt + "\n")
}
