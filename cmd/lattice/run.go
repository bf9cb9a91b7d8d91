package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	lattice "github.com/ajokela/lattice-sub005"
)

var flagWatch bool

var runCmd = &cobra.Command{
	Use:   "run <file.lat>",
	Short: "Run a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagWatch {
			return watchAndRun(args[0])
		}
		return runOnce(args[0])
	},
}

func init() {
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "re-run the script whenever it changes")
}

func runOnce(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	ip := lattice.NewInterpreter(
		lattice.WithLogger(logger),
		lattice.WithScriptDir(filepath.Dir(path)),
	)
	if _, err := ip.EvalSource(filepath.Base(path), string(src)); err != nil {
		return lattice.WrapErrorWithName(err, filepath.Base(path), string(src))
	}
	return nil
}

// watchAndRun runs the script, then re-runs it on every write. Each run
// gets a fresh interpreter so stale bindings never leak between runs.
func watchAndRun(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Watch the directory; editors often replace the file on save, which
	// drops a watch registered on the file itself.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		target = path
	}

	runReporting := func() {
		if err := runOnce(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	runReporting()

	var last time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || abs != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// Coalesce the bursts editors emit on save.
			if time.Since(last) < 100*time.Millisecond {
				continue
			}
			last = time.Now()
			logger.Debug("script changed, re-running", zap.String("path", ev.Name))
			fmt.Fprintf(os.Stderr, "-- %s changed, re-running --\n", filepath.Base(path))
			runReporting()
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", werr)
		}
	}
}
