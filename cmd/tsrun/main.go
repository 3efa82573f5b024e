// Command tsrun exposes TypeScript execution as an MCP tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/deixis/tsrun"
	"github.com/deixis/tsrun/internal/classify"
	"github.com/deixis/tsrun/internal/config"
	tsmcp "github.com/deixis/tsrun/internal/mcp"
	"github.com/deixis/tsrun/internal/runner"
	"github.com/lmittmann/tint"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// stdout belongs to the MCP transport; all logs go to stderr.
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "mcp":
		err = mcpMain(args)
	case "exec":
		err = execMain(args)
	case "version":
		fmt.Println(tsrun.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "tsrun: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tsrun <command> [flags] [-- permission flags]

Commands:
  mcp         Start the MCP server (stdio by default)
  exec        Execute a script file or -e snippet and print the result
  version     Print the version
  help        Show this help

Permission flags after "--" are passed verbatim to every spawned runtime
process (e.g. --allow-read --allow-net). They are fixed for the lifetime
of the server.

Use "tsrun <command> -h" for command-specific flags.`)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(tsmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return serve(ctx, *httpAddr, fs.Args())
}

func serve(ctx context.Context, httpAddr string, grants []string) error {
	r, loaded, err := newRunner(grants, 0)
	if err != nil {
		return err
	}

	slog.Info("starting MCP server",
		"version", tsrun.Version,
		"runtime", r.Bin,
		"permissions", r.Permissions,
		"config", loaded.Path)

	server := tsmcp.NewServer(r)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	slog.Info("listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- exec ---

func execMain(args []string) error {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	snippet := fs.String("e", "", "execute the given source instead of a file")
	timeoutFlag := fs.Duration("timeout", 0, "kill the script after this duration (e.g. 30s)")
	_ = fs.Parse(args)

	rest := fs.Args()

	var source string
	var grants []string
	switch {
	case *snippet != "":
		source = *snippet
		grants = rest
	case len(rest) > 0:
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		source = string(data)
		grants = rest[1:]
	default:
		return fmt.Errorf("exec: need a script file or -e snippet")
	}
	// flag.Parse only strips "--" when it terminates flag parsing; after
	// a positional argument it stays in Args.
	if len(grants) > 0 && grants[0] == "--" {
		grants = grants[1:]
	}

	r, _, err := newRunner(grants, *timeoutFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, runErr := r.Run(ctx, source)
	verdict := classify.Classify(res, runErr)
	if verdict.IsError {
		fmt.Fprintln(os.Stderr, verdict.Text)
		os.Exit(1)
	}
	fmt.Print(verdict.Text)
	return nil
}

// --- shared ---

// newRunner loads the configuration from the working directory and
// builds the runner, appending command-line permission grants after the
// configured ones.
func newRunner(grants []string, timeoutOverride time.Duration) (*runner.Runner, *config.LoadResult, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("determining working directory: %w", err)
	}

	loaded, err := config.Load(wd)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	permissions := append([]string{}, cfg.Permissions...)
	permissions = append(permissions, grants...)

	return &runner.Runner{
		Bin:         cfg.Runtime(),
		RunArgs:     cfg.RunArgs(),
		Permissions: permissions,
		Timeout:     timeout,
		MaxOutput:   cfg.MaxOutputBytes(),
	}, loaded, nil
}
