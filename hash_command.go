package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"imagededup/database"
	"imagededup/logging"
	"imagededup/scanner"
	"imagededup/signalhandler"
	"imagededup/types"
	"imagededup/utils"
)

func newHashCommand(ctx *commandContext) *cobra.Command {
	var (
		backend string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "hash <folder>",
		Short: "Compute perceptual hashes for every image under a folder",
		Long: "Walks the folder, hashes every .png, .jpg, .jpeg, .bmp and .heic file and " +
			"replaces the hash store. Files that cannot be identified or decoded are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if cmd.Flags().Changed("backend") {
				cfg.Scan.HashBackend = backend
			}
			if cmd.Flags().Changed("workers") && workers > 0 {
				cfg.Scan.Workers = workers
			}

			options := scanner.ScanOptions{
				StorePath:  cfg.Paths.StorePath,
				Backend:    cfg.Scan.HashBackend,
				MaxWorkers: cfg.Scan.Workers,
			}
			db, err := ctx.openMirror()
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				options.Recorder = database.NewMirror(db)
			}

			engine, err := scanner.NewEngine(options)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if engine.HasExistingStore() {
				fmt.Fprintf(out, "%s existing store %s will be replaced\n", warningColor("Note:"), engine.StorePath())
			}
			fmt.Fprintf(out, "%s hashing %s with %s backend, %d workers\n",
				infoColor("Starting:"), args[0], cfg.Scan.HashBackend, cfg.Scan.Workers)

			sink := newProgressSink(cmd.ErrOrStderr())
			stop := signalhandler.SetupHandler(func() {
				sink.abort()
				logging.CloseLogger()
			})
			defer stop()

			var ok bool
			err = engine.ComputeAll(args[0], sink.update, func(success bool) {
				ok = success
				sink.finish()
			})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("hashing %s did not complete", args[0])
			}

			printHashSummary(out, engine.LastSummary(), engine.StorePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Hash backend: opencv or native")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (default: CPU count)")
	return cmd
}

func printHashSummary(out io.Writer, s types.ScanSummary, storePath string) {
	elapsed := s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(out, "%s hashed %s of %d discovered in %v\n",
		successColor("Done:"), utils.Plural(s.Hashed, "image"), s.Discovered, elapsed)
	if s.Skipped > 0 {
		fmt.Fprintf(out, "%s %s skipped (unrecognized file type)\n", warningColor("Skipped:"), utils.Plural(s.Skipped, "file"))
	}
	if s.Failed > 0 {
		fmt.Fprintf(out, "%s %s could not be decoded; see the log for details\n", errorColor("Failed:"), utils.Plural(s.Failed, "file"))
	}
	fmt.Fprintf(out, "Hash store written to %s\n", storePath)
}

// progressSink renders engine progress as a bar on a terminal and as
// periodic log lines elsewhere. The engine serializes calls to update.
type progressSink struct {
	bar      *progressbar.ProgressBar
	lastStep int
}

func newProgressSink(out io.Writer) *progressSink {
	sink := &progressSink{lastStep: -1}
	if isTerminal(out) {
		sink.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("Hashing images"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		)
	}
	return sink
}

func (p *progressSink) update(percent float64) {
	if p.bar != nil {
		_ = p.bar.Set(int(percent))
		return
	}
	// One line per ten percent
	step := int(percent) / 10
	if step != p.lastStep {
		p.lastStep = step
		logging.LogInfo("Progress: %s", utils.FormatPercent(percent))
	}
}

func (p *progressSink) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func (p *progressSink) abort() {
	if p.bar != nil {
		_ = p.bar.Exit()
	}
}
