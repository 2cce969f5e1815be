// ghidramcp - MCP bridge for the GhidraMCP plugin's REST API.
// Entry point: flag parsing, configuration, transport selection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/revbridge/ghidramcp/internal/bridge"
	"github.com/revbridge/ghidramcp/internal/ghidra"
	"github.com/revbridge/ghidramcp/internal/infra/config"
	"github.com/revbridge/ghidramcp/internal/infra/logging"
	"github.com/revbridge/ghidramcp/internal/mcpserver"
	"github.com/revbridge/ghidramcp/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("ghidramcp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to a YAML config file")
	serverURL := fs.String("ghidra-server", "", "Ghidra plugin base URL")
	timeoutSecs := fs.Int("timeout", 0, "Request timeout in seconds")
	transport := fs.String("transport", "", "MCP transport: stdio or http")
	httpAddr := fs.String("http-addr", "", "Listen address for the http transport")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}
	if *showHelp {
		printHelp(out)
		return 0
	}

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		return 1
	}

	// Flags override file and environment.
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *timeoutSecs != 0 {
		cfg.TimeoutSeconds = *timeoutSecs
	}
	if *transport != "" {
		cfg.Transport = *transport
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		return 2
	}

	log := logging.New(cfg.LogLevel)
	defer log.Sync() //nolint:errcheck

	client := ghidra.NewClient(cfg.ServerURL, cfg.Timeout(), log)
	srv := mcpserver.New(bridge.New(client), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("starting ghidramcp",
		"ghidra_server", cfg.ServerURL,
		"timeout", cfg.Timeout().String(),
		"transport", cfg.Transport,
	)

	switch cfg.Transport {
	case config.TransportHTTP:
		err = srv.ServeHTTP(ctx, cfg.HTTPAddr, cfg.AuthSecret)
	default:
		err = srv.ServeStdio(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("server stopped", "err", err)
		return 1
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `ghidramcp - MCP bridge for the GhidraMCP plugin

Usage:
  ghidramcp [options]

Options:
  --version              Show version information
  --help                 Show this help message
  --config PATH          YAML config file
  --ghidra-server URL    Ghidra plugin base URL (default http://127.0.0.1:8080/)
  --timeout SECONDS      Request timeout (default 5)
  --transport NAME       stdio (default) or http
  --http-addr ADDR       Listen address for the http transport (default 127.0.0.1:8081)

Environment:
  GHIDRA_SERVER_URL, GHIDRA_REQUEST_TIMEOUT, MCP_TRANSPORT,
  MCP_HTTP_ADDR, MCP_AUTH_SECRET, LOG_LEVEL

Examples:
  ghidramcp --ghidra-server http://127.0.0.1:8080/
  ghidramcp --transport http --http-addr 127.0.0.1:8081`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
