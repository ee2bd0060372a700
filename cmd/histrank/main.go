// Copyright 2025 The Histrank Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the histrank interactive history picker.

Note: This is a BETA release. APIs and functionality may rapidly change.

Histrank ranks shell history by recency-weighted frequency and serves it
back through an interactive picker bound to Ctrl+R. Commands that earn
their place rise to the top; noise commands (ls, pwd, cd) never enter
the ranking at all.

The engine reads the history file as-is, bash plain lines or zsh
extended format, and never owns storage of its own. Removals rewrite
the file verbatim minus the removed lines, and the running shell is
told to re-read it.

# Usage

Open the picker on the current shell history:

	histrank

Seed the filter with an initial query:

	histrank git push

Print the ranked history to stdout instead of picking:

	histrank -n -limit 20

Run the line REPL for testing the ranking live:

	histrank -c

# Configuration

Runtime configuration is managed through a TOML file holding ranking,
server, and interface settings:

	[history]
	file = ""               # override discovery ($HISTFILE, ~/.bash_history)

	[ranking]
	blacklist = ["clear"]   # extends the builtin noise set
	key_floor = 100000
	key_scale = 1000
	clamp_big_keys = true

	[tui]
	match_mode = "substring"
	print_limit = 0

	[cli]
	default_limit = 24
	default_mode = "substring"

The config file is automatically created with defaults if it doesn't
exist, at $XDG_CONFIG_HOME/histrank/config.toml or the platform
equivalent.

# Picker Mode

The default mode opens a full-screen picker on /dev/tty, leaving stdin
and stdout untouched for the shell. Enter types the picked command into
the terminal input queue and runs it; Tab types it and leaves it on the
prompt for editing; Ctrl+D removes every occurrence of the highlighted
command from the history file.

After any removal the picker types the format's reload directive
("history -r" or "fc -R") into the shell before anything else, so the
shell's in-memory history catches up with the rewritten file.

When the terminal input queue is not writable (TIOCSTI disabled), the
selection falls back to stdout so a command-substitution binding still
works.

# Print Mode

-n prints the ranked history to stdout, best candidate first, one
command per line. Combined with a query it prints matches only:

	histrank -n git | head -5

# Shell Integration

-shell-config prints the snippet that binds Ctrl+R for the given shell:

	histrank -shell-config bash >> ~/.bashrc
	histrank -shell-config zsh  >> ~/.zshrc

# Command Line Flags

The following flags control application behavior:

	-d  Enable debug mode with detailed logging
	-n  Print the ranked history to stdout and exit
	-c  Run the line REPL instead of the picker
	-limit int
	    Number of commands to return (0 uses the config default)
	-m string
	    Match mode: substring or prefix (default from config)
	-f string
	    History file to read (default $HISTFILE, then ~/.bash_history)
	-config string
	    Custom config file path
	-shell-config string
	    Print the Ctrl+R binding for bash or zsh and exit
	-version
	    Show current version

Exit codes follow shell-widget conventions: 0 means a command was
picked (or a non-interactive mode succeeded), 1 means the picker was
cancelled, and 2 means histrank could not run and the binding should
fall back to the shell's native Ctrl+R.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/bastiangx/histrank/internal/cli"
	"github.com/bastiangx/histrank/internal/term"
	"github.com/bastiangx/histrank/internal/tui"
	"github.com/bastiangx/histrank/pkg/config"
	"github.com/bastiangx/histrank/pkg/histfile"
	"github.com/bastiangx/histrank/pkg/rank"
	"github.com/bastiangx/histrank/pkg/session"
	"github.com/bastiangx/histrank/pkg/suggest"
)

const (
	Version = "0.4.0-beta"
	AppName = "histrank"
	gh      = "https://github.com/bastiangx/histrank"
)

// Exit codes the shell bindings rely on:
//
//	0 = command picked, or non-interactive mode succeeded
//	1 = cancelled by user
//	2 = could not run (no TTY, lock held, bad history file)
const (
	exitSuccess   = 0
	exitCancelled = 1
	exitFallback  = 2
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main parses flags and hands off to one of the modes. main() does not
// implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run the line REPL -- useful for testing and debugging")
	printMode := flag.Bool("n", false, "Print the ranked history to stdout and exit")
	limit := flag.Int("limit", 0, "Number of commands to return (0 uses the config default)")
	matchMode := flag.String("m", "", "Match mode: substring or prefix (default from config)")
	histFile := flag.String("f", "", "History file to read (default $HISTFILE, then ~/.bash_history)")
	configPath := flag.String("config", "", "Custom config file path")
	shellName := flag.String("shell-config", "", "Print the Ctrl+R binding for bash or zsh and exit")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
			Prefix:          "",
		})

		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)

		logger.Print("")
		logger.Print("[ Histrank ] Ranked shell history on Ctrl+R")
		logger.Print("", "version", Version)
		logger.Print("")
		logger.Print("use -h or --help to see available options")
		logger.Print("Github Repo", "gh", gh)

		os.Exit(exitSuccess)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *shellName != "" {
		if err := printShellConfig(os.Stdout, *shellName); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	cfg, cfgPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Warnf("config load: %v -- using builtin defaults", err)
		cfg = config.DefaultConfig()
	}
	if cfgPath != "" {
		log.Debugf("Using config file: (%s)", cfgPath)
	}

	path := *histFile
	if path == "" {
		path = cfg.History.File
	}
	if path == "" {
		path, err = histfile.DefaultPath()
		if err != nil {
			log.Fatalf("Failed to locate a history file: %v", err)
		}
	}

	store, err := histfile.Load(path)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}
	log.Debugf("Loaded %d entries from %s (%s)", store.Len(), store.Path(), store.Format())

	opts := cfg.RankOptions()
	query := strings.Join(flag.Args(), " ")

	modeName := *matchMode
	if modeName == "" {
		modeName = cfg.TUI.MatchMode
		if *cliMode {
			modeName = cfg.CLI.DefaultMode
		}
	}
	mode := suggest.ParseMode(modeName)

	if *printMode {
		n := *limit
		if n <= 0 {
			n = cfg.TUI.PrintLimit
		}
		runPrint(os.Stdout, store, opts, query, n, mode)
		return
	}

	// The REPL is mainly used for testing and dbg purposes. Any new
	// ranking features should be tried here first.
	if *cliMode {
		log.SetReportTimestamp(false)
		corpus := rank.Prioritize(store, opts)
		var items []string
		if corpus != nil {
			items = corpus.Items
			logStats(corpus.Stats)
		}

		n := *limit
		if n <= 0 {
			n = cfg.CLI.DefaultLimit
		}
		log.Debug("Input info:",
			"minQuery", cfg.Server.MinQuery,
			"maxQuery", cfg.Server.MaxQuery,
			"limit", n,
			"mode", mode)

		inputHandler := cli.NewInputHandler(suggest.NewSuggester(items), cfg.Server.MinQuery, cfg.Server.MaxQuery, n, mode)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	os.Exit(runPicker(store, opts, mode, query))
}

// runPicker opens the full-screen picker on /dev/tty and reports the
// exit code for the shell binding. stdin and stdout stay untouched so
// both injection and command-substitution bindings work.
func runPicker(store *histfile.Store, opts rank.Options, mode suggest.Mode, query string) int {
	tty, err := term.NewTTY()
	if err != nil {
		log.Errorf("%v", err)
		return exitFallback
	}
	defer tty.Close()

	lock, err := lockPath()
	if err != nil {
		log.Errorf("%v", err)
		return exitFallback
	}
	lockFd, err := acquireLock(lock)
	if err != nil {
		log.Errorf("%v", err)
		return exitFallback
	}
	defer releaseLock(lockFd)

	sess := session.New(store, tty)
	m := tui.New(sess, opts, mode)
	if query != "" {
		m = m.WithQuery(query)
	}

	// Detect styles from the real tty: stdout may be a pipe when the
	// binding captures output, which would strip color.
	lipgloss.SetColorProfile(termenv.NewOutput(tty.File()).ColorProfile())

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithInput(tty.File()),
		tea.WithOutput(tty.File()),
	)
	finalModel, err := p.Run()
	if err != nil {
		log.Errorf("picker: %v", err)
		return exitFallback
	}
	final, ok := finalModel.(tui.Model)
	if !ok {
		log.Error("picker returned an unexpected model")
		return exitFallback
	}

	result, action := final.Result()

	// The reload directive goes in first so the shell re-reads the
	// rewritten file before anything else lands on the prompt. This
	// holds on cancel too: removals may have rewritten the file.
	if err := sess.FlushIfDirty(); err != nil {
		log.Warnf("history flush: %v -- run %q to resync", err, store.Format().ReloadCmd())
	} else {
		sess.ClearDirty()
	}

	if action == tui.ActionNone {
		return exitCancelled
	}

	text := result
	if action == tui.ActionExecute {
		text += "\n"
	}
	if err := tty.Inject(text); err != nil {
		// TIOCSTI may be compiled out or disabled. A command
		// substitution binding still picks the result off stdout.
		log.Debugf("tty inject: %v", err)
		fmt.Fprintln(os.Stdout, result)
	}
	return exitSuccess
}

// runPrint writes the ranked history to w, best candidate first. A
// query narrows the output to matches; limit 0 prints everything.
func runPrint(w io.Writer, store *histfile.Store, opts rank.Options, query string, limit int, mode suggest.Mode) {
	corpus := rank.Prioritize(store, opts)
	if corpus == nil {
		return
	}
	logStats(corpus.Stats)

	sug := suggest.NewSuggester(corpus.Items)
	for _, s := range sug.Query(query, limit, mode) {
		fmt.Fprintln(w, s.Text)
	}
}

// logStats surfaces one ranking pass's shape under -d.
func logStats(st rank.Stats) {
	log.Debug("Ranking pass:",
		"raw", st.RawEntries,
		"ranked", st.Ranked,
		"blacklisted", st.Blacklisted,
		"skipped", st.Skipped,
		"keyspace", st.KeySpace,
		"maxKey", st.MaxKey)
}

// lockPath is where the single-instance lock lives. Two pickers
// rewriting one history file would race each other.
func lockPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate cache dir: %w", err)
	}
	dir = filepath.Join(dir, "histrank")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create cache dir: %w", err)
	}
	return filepath.Join(dir, "picker.lock"), nil
}

// printShellConfig writes the Ctrl+R binding snippet for shell to w.
func printShellConfig(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		fmt.Fprint(w, bashConfig)
	case "zsh":
		fmt.Fprint(w, zshConfig)
	default:
		return fmt.Errorf("unknown shell %q (bash and zsh are supported)", shell)
	}
	return nil
}

// The bindings jump to the start of the line, prepend "histrank -- ",
// and submit. Whatever was already typed rides along as the initial
// query.
const bashConfig = `# histrank shell integration
export HISTCONTROL=ignorespace   # a leading space keeps a command out of history
shopt -s histappend              # append new entries instead of overwriting
export PROMPT_COMMAND="history -a; history -n; ${PROMPT_COMMAND}"
if [[ $- =~ .*i.* ]]; then bind '"\C-r": "\C-a histrank -- \C-j"'; fi
`

const zshConfig = `# histrank shell integration
setopt INC_APPEND_HISTORY        # write entries as they happen
bindkey -s "\C-r" "\C-ahistrank -- \C-j"
`
