// Command lldbmcpd is the debugging-control server's binary: it wires
// configuration, logging, the Session Manager, the RPC Dispatch table and
// the TCP/stdio transports together, and offers a small cobra command tree
// for operating the daemon from a terminal.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lldb-mcp/server/internal/config"
	"github.com/lldb-mcp/server/internal/engine"
	"github.com/lldb-mcp/server/internal/engine/shim"
	"github.com/lldb-mcp/server/internal/health"
	"github.com/lldb-mcp/server/internal/history"
	"github.com/lldb-mcp/server/internal/logging"
	"github.com/lldb-mcp/server/internal/rpc"
	"github.com/lldb-mcp/server/internal/session"
	"github.com/lldb-mcp/server/internal/transport"
)

// Build information, set by the release pipeline via -ldflags.
var (
	Version   = "0.1.0"
	BuildTime = "development"
	GitCommit = "unknown"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

var configPath string
var stdioFlag bool

var rootCmd = &cobra.Command{
	Use:   "lldbmcpd",
	Short: "Debugging-control server multiplexing LLDB sessions behind a JSON-RPC interface",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON configuration file")
	rootCmd.AddCommand(serveCmd, historyCmd, configCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daemon, serving the TCP transport (and stdio with --stdio)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&stdioFlag, "stdio", false, "also serve the stdio transport variant")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		AppLogPath: cfg.AppLogPath(),
		Console:    true,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.DatabasePath, log)
		if err != nil {
			log.Warn("history.open_failed", map[string]interface{}{"error": err.Error()})
			hist = nil
		} else {
			defer hist.Close()
		}
	}

	engineFactory := engineFactoryFor(cfg)
	mgr := session.NewManager(cfg, log, engineFactory, hist)
	dispatcher := rpc.NewDispatcher(mgr)
	metrics := health.NewMetrics()

	tcp := transport.NewTCPServer(dispatcher, metrics, log)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := tcp.Serve(addr); err != nil {
			log.Error("transport.tcp_failed", err, nil)
		}
	}()
	infoColor.Printf("lldbmcpd listening on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

	if cfg.Stdio.Enabled || stdioFlag {
		go transport.ServeStdio(os.Stdin, os.Stdout, dispatcher, metrics, log)
		infoColor.Println("lldbmcpd serving stdio transport")
	}

	if cfg.Health.Enabled {
		healthSrv := health.New(mgr, metrics)
		go func() {
			addr := fmt.Sprintf("%s:%d", cfg.Health.Host, cfg.Health.Port)
			log.Info("health.listening", map[string]interface{}{"addr": addr})
			if err := httpListenAndServe(addr, healthSrv.Handler()); err != nil {
				log.Error("health.failed", err, nil)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("daemon.shutdown", map[string]interface{}{"signal": sig.String()})
	_ = tcp.Close()
	successColor.Println("lldbmcpd stopped")
	return nil
}

// engineFactoryFor selects the cgo-backed LLDB adapter when the binary was
// built with -tags lldb, or the always-unavailable stub otherwise; either
// way Manager.CreateSession degrades gracefully rather than failing.
func engineFactoryFor(cfg *config.Config) engine.Factory {
	return shim.New(cfg.Engine.LibraryPaths, cfg.Performance.PumpPollTimeout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently recorded debugging sessions",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.History.Enabled {
		infoColor.Println("history store is disabled in configuration")
		return nil
	}
	log, closeLog, err := logging.New(logging.Config{Level: cfg.Logging.Level, Console: true})
	if err != nil {
		return err
	}
	defer closeLog()

	hist, err := history.Open(cfg.History.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("open history database: %w", err)
	}
	defer hist.Close()

	return printRecentSessions(cmd, hist)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the daemon's resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration as JSON",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return printConfig(cmd, cfg)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lldbmcpd %s (build %s, commit %s)\n", Version, BuildTime, GitCommit)
	},
}
