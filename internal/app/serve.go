package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devdash/internal/editor"
	"github.com/blackwell-systems/devdash/internal/gitstatus"
	"github.com/blackwell-systems/devdash/internal/lmstudio"
	"github.com/blackwell-systems/devdash/internal/server"
	"github.com/blackwell-systems/devdash/internal/sysinfo"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Serve starts the dashboard HTTP API on server.addr (default :5000).
It serves the cached snapshot with live git status, triggers rescans, reports
system resources, and proxies questions to a local LM Studio model.

Stop it with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !flagVerbose {
		logger.SetLevel(logrus.InfoLevel)
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(server.Options{
		RootDir:        cfg.RootDir,
		CacheFile:      cfg.CacheFile,
		Concurrency:    cfg.Scan.Concurrency,
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		StaticDir:      cfg.Server.StaticDir,
		EditorSettings: cfg.Editor.SettingsPath,
		Sampler:        sysinfo.NewSampler(),
		Assistant: lmstudio.NewClient(lmstudio.Options{
			BaseURL:          cfg.LMStudio.URL,
			Model:            cfg.LMStudio.Model,
			Timeout:          cfg.LMStudio.Timeout,
			StatusTimeout:    cfg.LMStudio.StatusTimeout,
			QueriesPerMinute: cfg.LMStudio.QueriesPerMinute,
		}),
		Git:    gitstatus.NewChecker(cfg.Git.Timeout),
		Editor: editor.New(cfg.Editor.Command),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"root":     cfg.RootDir,
		"cache":    cfg.CacheFile,
		"lmstudio": cfg.LMStudio.URL,
	}).Info("starting dashboard API")
	return srv.ListenAndServe(ctx, addr)
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
