package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/pyc-lang/pyc/compiler"
)

const (
	historyFile = ".pyc_history"
	promptMain  = "pyc> "
	promptCont  = "...> "
	replUnit    = "<repl>"
)

const replHelp = `Statements are compiled as they are entered; the C text of the whole
session is printed after every accepted batch.
  :source  print the accepted source
  :reset   forget everything entered so far
  :quit    leave`

func runRepl(out, errOut io.Writer) error {
	fmt.Fprintf(out, "pyc %s. Type :help for commands.\n", Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	session := compiler.NewSession(replUnit)
	for {
		src, ok := readBatch(ln, session)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if replEval(session, src, out, errOut) {
			return nil
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readBatch prompts until the input parses or fails for a reason other than
// ending early. It reports false at end of input.
func readBatch(ln *liner.State, session *compiler.Session) (string, bool) {
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
			// Ctrl+C drops the pending batch
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.Incomplete(src) {
			return src, true
		}
	}
}

// replEval handles one batch: a command or source to add to the session.
// It reports true when the session should end.
func replEval(session *compiler.Session, src string, out, errOut io.Writer) bool {
	if cmd := strings.TrimSpace(src); strings.HasPrefix(cmd, ":") {
		switch strings.ToLower(cmd) {
		case ":quit", ":q":
			return true
		case ":reset":
			session.Reset()
			fmt.Fprintln(out, "session cleared")
		case ":source":
			fmt.Fprint(out, session.Source())
		case ":help":
			fmt.Fprintln(out, replHelp)
		default:
			fmt.Fprintf(out, "unknown command %s. Type :help for commands.\n", cmd)
		}
		return false
	}

	code, errs := session.Add(src)
	for _, err := range errs {
		fmt.Fprintln(errOut, err)
	}
	if errs == nil {
		fmt.Fprint(out, code)
	}
	return false
}
