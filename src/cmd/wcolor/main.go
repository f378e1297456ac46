package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"

	"wcolor/src/config"
	"wcolor/src/cursor"
	"wcolor/src/eventloop"
	"wcolor/src/input"
	"wcolor/src/logutil"
	"wcolor/src/preview"
	"wcolor/src/sampler"
	"wcolor/src/session"
)

// initialOffset places the preview before the first tick moves it.
var initialOffset = image.Pt(20, 20)

type cliOptions struct {
	config.Flags
}

func init() {
	// Windows created by main must be pumped by the thread that created them.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"wcolor"}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := &cliOptions{}
	cmd := newRootCmd(cfg, opts, pick)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(cfg *config.Config, opts *cliOptions, pickFn func(context.Context, config.Options) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wcolor",
		Short:         "Pick the color of any pixel on screen",
		Long:          "Shows the color under the cursor next to it and prints it on the next left click.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate before any OS resource is acquired.
			resolved, err := config.Resolve(opts.Flags)
			if err != nil {
				return err
			}
			return pickFn(cmd.Context(), resolved)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", cfg.Format, "Output format: HEX, hex or RGB")
	cmd.Flags().BoolVarP(&opts.NoPreview, "no-preview", "n", false, "Do not show the color preview next to the cursor")
	cmd.Flags().BoolVarP(&opts.Clipboard, "clipboard", "c", false, "Also copy the picked color to the clipboard")
	cmd.Flags().IntVarP(&opts.Size, "size", "s", cfg.Size, "Preview size in pixels (0-255, 0 disables the preview)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", cfg.Interval, "Delay between preview updates")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log to stderr and show a swatch of the picked color")
	cmd.Flags().BoolVar(&opts.LogFile, "log-file", cfg.EnableFileLogging, "Write a debug log to "+logutil.DefaultLogFile)

	return cmd
}

func pick(ctx context.Context, opts config.Options) error {
	closeLog, err := logutil.Setup(logutil.Options{Verbose: opts.Verbose, File: opts.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
	}
	defer closeLog()

	if err := enableDPIAwareness(); err != nil {
		log.Printf("DPI: %v; picked colors may be offset on scaled displays", err)
	}
	logMonitorConfiguration()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher := input.NewWatcher(input.NewPlatformPump())
	src, ok := cursor.Platform()
	if !ok {
		log.Printf("CURSOR: no cursor query on this platform, following hook events")
		src = watcher
	}

	// The preview window belongs to this thread; the loop below pumps it.
	var surface session.Surface
	if opts.Preview {
		start, err := src.Position()
		if err != nil {
			start = image.Point{}
		}
		s, err := preview.Create(preview.NewPlatformOpener(), start.Add(initialOffset), opts.Size)
		if err != nil {
			return err
		}
		surface = s
	}

	targets := []session.ResultTarget{session.StdoutTarget{}}
	if opts.Clipboard {
		targets = append(targets, session.ClipboardTarget{})
	}
	if opts.Verbose {
		targets = append(targets, session.SwatchTarget{})
	}

	loop := eventloop.New()
	return loop.Run(ctx, func(ctx context.Context) error {
		smp, err := sampler.Open()
		if err != nil {
			if surface != nil {
				_ = surface.Release()
			}
			return fmt.Errorf("failed to open screen sampler: %w", err)
		}
		defer smp.Close()

		_, err = session.Execute(ctx, session.Options{
			Format:       opts.Format,
			Surface:      surface,
			Sampler:      smp,
			Cursor:       src,
			Watcher:      watcher,
			Targets:      targets,
			TickInterval: opts.Interval,
			Offset:       session.DefaultOffset,
		})
		return err
	})
}
