package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/xraph/folio/bridge"
	"github.com/xraph/folio/invoice"
)

type runFunc func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error

// withApp opens the app for the duration of one command.
func withApp(flags *globalFlags, run runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx, flags, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		return run(ctx, a, cmd, args)
	}
}

// callOp runs a fixed operation whose payload is built from the arguments.
func callOp(flags *globalFlags, op string, payload func(cmd *cobra.Command, args []string) ([]byte, error)) func(*cobra.Command, []string) error {
	return withApp(flags, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		var data []byte
		if payload != nil {
			var err error
			if data, err = payload(cmd, args); err != nil {
				return err
			}
		}
		return a.call(ctx, cmd.OutOrStdout(), op, data)
	})
}

func firstArg(_ *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	return textPayload(args[0]), nil
}

func document(cmd *cobra.Command, args []string) ([]byte, error) {
	return readPayload(cmd.InOrStdin(), args)
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Invoice documents and address book",
		Long: `Folio keeps invoices, billing clients and issuer profiles as JSON files in a
data directory and renders invoices to PDF or XLSX.

Every command prints its result as indented JSON.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		callCmd(flags),
		invoiceCmd(flags),
		contactCmd(flags, "client", "Manage billing clients", bridge.OpClientsList, bridge.OpClientsSave, bridge.OpClientsDelete),
		contactCmd(flags, "profile", "Manage issuer profiles", bridge.OpProfilesList, bridge.OpProfilesSave, bridge.OpProfilesDelete),
		settingsCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func callCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "call <operation> [payload|-]",
		Short: "Invoke a bridge operation with a JSON payload",
		Long: `Invoke a bridge operation directly. The payload is inline JSON, a file path,
or "-" for standard input. A payload that is not JSON is sent as a string.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(flags, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 2 {
				data, err := readPayload(cmd.InOrStdin(), args[1:])
				if err != nil && !isJSON([]byte(args[1])) {
					data, err = textPayload(args[1]), nil
				}
				if err != nil {
					return err
				}
				payload = data
			}
			return a.call(ctx, cmd.OutOrStdout(), args[0], payload)
		}),
	}
}

func invoiceCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage invoices",
	}

	var nextNumber string
	duplicate := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Copy an invoice under a new number dated today",
		Args:  cobra.ExactArgs(1),
		RunE: callOp(flags, bridge.OpInvoiceDuplicate, func(_ *cobra.Command, args []string) ([]byte, error) {
			return json.Marshal(bridge.DuplicateRequest{ID: args[0], NextNumber: nextNumber})
		}),
	}
	duplicate.Flags().StringVar(&nextNumber, "number", "", "Invoice number of the copy (default: next from counter)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [query]",
			Short: "List invoice summaries, newest first",
			Args:  cobra.MaximumNArgs(1),
			RunE:  callOp(flags, bridge.OpInvoiceList, firstArg),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print an invoice",
			Args:  cobra.ExactArgs(1),
			RunE:  callOp(flags, bridge.OpInvoiceLoad, firstArg),
		},
		&cobra.Command{
			Use:   "save [file|json|-]",
			Short: "Create or update an invoice",
			Args:  cobra.MaximumNArgs(1),
			RunE:  callOp(flags, bridge.OpInvoiceSave, document),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an invoice",
			Args:  cobra.ExactArgs(1),
			RunE:  callOp(flags, bridge.OpInvoiceDelete, firstArg),
		},
		duplicate,
		&cobra.Command{
			Use:   "next-number",
			Short: "Issue the next invoice number",
			Args:  cobra.NoArgs,
			RunE:  callOp(flags, bridge.OpInvoiceNextNumber, nil),
		},
		exportCmd(flags),
	)

	return cmd
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <id> [path]",
		Short: "Render a stored invoice to PDF or XLSX",
		Long: `Render a stored invoice. The format follows the path extension; a path
without extension gets --format or the configured export format. Without a
path the file is written to the configured export directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(flags, func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			loaded, err := a.bridge.Invoke(ctx, bridge.OpInvoiceLoad, textPayload(args[0]))
			if err != nil {
				return err
			}
			inv, ok := loaded.(*invoice.Invoice)
			if !ok {
				return errors.New("unexpected invoice.load result")
			}

			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			payload, err := json.Marshal(bridge.ExportRequest{
				Invoice: inv,
				Path:    a.exportPath(inv, target, format),
			})
			if err != nil {
				return err
			}
			return a.call(ctx, cmd.OutOrStdout(), bridge.OpDocumentExport, payload)
		}),
	}
	cmd.Flags().StringVar(&format, "format", "", "Format for paths without extension (pdf, xlsx)")

	return cmd
}

func contactCmd(flags *globalFlags, name, short, listOp, saveOp, deleteOp string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [query]",
			Short: "List records matching query",
			Args:  cobra.MaximumNArgs(1),
			RunE:  callOp(flags, listOp, firstArg),
		},
		&cobra.Command{
			Use:   "save [file|json|-]",
			Short: "Create or update a record",
			Args:  cobra.MaximumNArgs(1),
			RunE:  callOp(flags, saveOp, document),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a record",
			Args:  cobra.ExactArgs(1),
			RunE:  callOp(flags, deleteOp, firstArg),
		},
	)

	return cmd
}

func settingsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change application settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the settings",
			Args:  cobra.NoArgs,
			RunE:  callOp(flags, bridge.OpSettingsGet, nil),
		},
		&cobra.Command{
			Use:   "set [file|json|-]",
			Short: "Merge a partial settings document",
			Args:  cobra.MaximumNArgs(1),
			RunE:  callOp(flags, bridge.OpSettingsSave, document),
		},
	)

	return cmd
}
