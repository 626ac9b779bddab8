package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/po-scanner/backend/internal/uploader"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	cmd := newCommand(os.Stdout, os.Stderr)
	cmd.Flags().AddFlagSet(pflag.CommandLine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "poupload: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		server   string
		baseline bool
	)

	cmd := &cobra.Command{
		Use:   "poupload [file]",
		Short: "upload a purchase order to the scanner",
		Long: `Uploads a PDF to the scanner's /upload endpoint, printing status lines
to stderr and the extracted JSON to stdout.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			picker := uploader.PathPicker{}
			if len(args) == 1 {
				picker.Path = args[0]
			}

			mode := uploader.FailureReported
			if baseline {
				mode = uploader.FailureBaseline
			}

			panel := &uploader.TextPanel{}
			ctrl := uploader.NewController(server, uploader.View{
				Picker:  picker,
				Status:  uploader.ConsoleStatus{W: stderr},
				Results: panel,
			}, uploader.WithFailureMode(mode))

			outcome, err := ctrl.Submit(cmd.Context())
			klog.V(2).Infof("upload finished: %s", outcome)
			if panel.Visible() {
				fmt.Fprintln(stdout, panel.Output())
			}
			if err != nil {
				return err
			}
			if outcome == uploader.OutcomeNoFile {
				return fmt.Errorf("no file selected")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:5000", "scanner base URL")
	cmd.Flags().BoolVar(&baseline, "baseline", false, "leave transport and parse failures out of the status line")
	return cmd
}
