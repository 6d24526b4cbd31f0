package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/xraph/folio"
	audithook "github.com/xraph/folio/audit_hook"
	"github.com/xraph/folio/bridge"
	"github.com/xraph/folio/config"
	"github.com/xraph/folio/store/file"
)

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	configPath string
	dataDir    string
	logLevel   string
}

// app is the wired engine behind one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	engine  *folio.Folio
	bridge  *bridge.Dispatcher
	closers []io.Closer
}

// openApp loads configuration, applies flag overrides and starts the engine
// over the file store.
func openApp(ctx context.Context, flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := config.NewLoader(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))).Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	a := &app{cfg: cfg, logger: logger}
	opts := []folio.Option{folio.WithLogger(logger)}

	if cfg.Audit.Path != "" {
		f, err := os.OpenFile(cfg.Audit.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		a.closers = append(a.closers, f)
		recorder := audithook.NewWriterRecorder(f)
		opts = append(opts, folio.WithPlugin(audithook.New(recorder, audithook.WithLogger(logger))))
	}

	a.engine = folio.New(file.New(cfg.DataDir, file.WithLogger(logger)), opts...)
	if err := a.engine.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start: %w", err)
	}
	a.bridge = bridge.New(a.engine)

	logger.Debug("folio ready", "version", Version, "data_dir", cfg.DataDir)
	return a, nil
}

// Close stops the engine and releases opened files.
func (a *app) Close() error {
	var err error
	if a.engine != nil {
		err = a.engine.Stop()
	}
	for _, c := range a.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// call invokes op and prints its result as indented JSON.
func (a *app) call(ctx context.Context, out io.Writer, op string, payload []byte) error {
	result, err := a.bridge.Invoke(ctx, op, payload)
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

// exportPath resolves the destination of an export. An empty target names
// the file after the invoice inside the configured export dir; a target
// without extension gets the configured format.
func (a *app) exportPath(inv *folio.Invoice, target, format string) string {
	if format == "" {
		format = a.cfg.Export.Format
	}
	if target == "" {
		name := folio.Slugify(inv.InvoiceNumber)
		if name == "" {
			name = inv.ID
		}
		target = filepath.Join(a.cfg.Export.Dir, "invoice-"+name)
	}
	if filepath.Ext(target) == "" {
		target += "." + format
	}
	return target
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// readPayload returns the JSON document named by arg: inline JSON, a file
// path, or standard input for "-" or no argument.
func readPayload(in io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(in)
	}
	arg := strings.TrimSpace(args[0])
	if strings.HasPrefix(arg, "{") || strings.HasPrefix(arg, "[") || strings.HasPrefix(arg, `"`) {
		return []byte(arg), nil
	}
	return os.ReadFile(arg)
}

// textPayload encodes s as a JSON string payload, or nil when empty.
func textPayload(s string) []byte {
	if s == "" {
		return nil
	}
	data, _ := json.Marshal(s)
	return data
}

// isJSON reports whether data looks like a JSON document rather than text.
func isJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && (data[0] == '{' || data[0] == '[' || data[0] == '"')
}
