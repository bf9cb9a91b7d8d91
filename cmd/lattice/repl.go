package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	lattice "github.com/ajokela/lattice-sub005"
)

const (
	promptMain = "lat> "
	promptCont = "...> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

func historyPath() string {
	p := viper.GetString("history_file")
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if p == "" {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".lattice_history")
	}
	return p
}

func runRepl() error {
	fmt.Printf("Lattice %s\nCtrl+D or :quit exits. :help lists commands.\n", lattice.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	ip := lattice.NewInterpreter(lattice.WithLogger(logger))

	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return nil
			case ":help":
				fmt.Print(replHelp)
			default:
				fmt.Println("unknown command; :help lists commands")
			}
			continue
		}

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, lattice.WrapErrorWithName(err, "<repl>", code))
			continue
		}
		fmt.Println(lattice.Display(v))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

const replHelp = `Commands:
  :help    Show this help
  :quit    Exit the session
`

// readInput collects lines until the input parses or the error is not an
// end-of-input parse error, so blocks can span multiple lines.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, true
		}
		if _, err := lattice.Parse(src); err == nil || !needsMore(err) {
			return src, true
		}
	}
}

// needsMore reports whether a parse error looks like truncated input
// rather than a genuine syntax error.
func needsMore(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "end of input") ||
		strings.Contains(msg, "unterminated block comment")
}
