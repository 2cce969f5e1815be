// ghidractl - diagnostic CLI for the GhidraMCP plugin's REST API.
// Issues a single GET or POST against the plugin and prints the normalized
// result, so operators can probe an endpoint without attaching an MCP client.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/revbridge/ghidramcp/internal/ghidra"
	"github.com/revbridge/ghidramcp/internal/infra/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("ghidractl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	serverURL := fs.String("server", "", "Ghidra plugin base URL (default from env/config)")
	timeoutSecs := fs.Int("timeout", 0, "Request timeout in seconds")
	rawBody := fs.String("body", "", "Raw POST body (post only; overrides key=value pairs)")
	configPath := fs.String("config", "", "Path to a YAML config file")

	if err := fs.Parse(args); err != nil {
		printUsage(out)
		return 2
	}

	rest := fs.Args()
	if len(rest) < 2 {
		printUsage(out)
		return 2
	}
	verb, endpoint := rest[0], rest[1]
	params, err := parsePairs(rest[2:])
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		return 2
	}

	cfg, err := config.LoadWithFile(*configPath)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err) //nolint:errcheck
		return 1
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *timeoutSecs != 0 {
		cfg.TimeoutSeconds = *timeoutSecs
	}

	client := ghidra.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSeconds)*time.Second, nil)
	ctx := context.Background()

	switch verb {
	case "get":
		for _, line := range client.FetchLines(ctx, endpoint, params) {
			fmt.Fprintln(out, line) //nolint:errcheck
		}
		return 0
	case "post":
		var data any
		if *rawBody != "" {
			data = *rawBody
		} else {
			data = params
		}
		fmt.Fprintln(out, client.SubmitPayload(ctx, endpoint, data)) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(out, "Error: unknown verb %q (want get or post)\n", verb) //nolint:errcheck
		return 2
	}
}

// parsePairs converts "key=value" arguments into a parameter map.
func parsePairs(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed parameter %q (want key=value)", pair)
		}
		params[key] = value
	}
	return params, nil
}

func printUsage(out io.Writer) {
	usage := `ghidractl - probe the GhidraMCP plugin REST API

Usage:
  ghidractl [options] get <endpoint> [key=value ...]
  ghidractl [options] post <endpoint> [key=value ...]

Options:
  -server URL       Ghidra plugin base URL
  -timeout SECONDS  Request timeout
  -body TEXT        Raw POST body instead of form fields
  -config PATH      YAML config file

Examples:
  ghidractl get methods offset=0 limit=25
  ghidractl get bsim/status
  ghidractl post bsim/select_database database_path=/path/to/db.bsim
  ghidractl -body main post decompile`
	fmt.Fprintln(out, usage) //nolint:errcheck
}
