package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codelab/internal/terminal"
	"codelab/internal/transport"
	"codelab/internal/watcher"
	"codelab/internal/workspace"
	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

func newRunCommand() *cobra.Command {
	var teacherSession string
	var noTerminal bool

	cmd := &cobra.Command{
		Use:   "run <lesson-id>",
		Short: "Open a lesson workspace",
		Long: "Open a lesson workspace: files are materialized into a scratch\n" +
			"directory for editing with any editor, and a remote terminal is\n" +
			"attached to this one. Press Ctrl-] to leave the session. With\n" +
			"--teacher-session the workspace joins a teacher's live session and\n" +
			"broadcasts every edit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspace(args[0], teacherSession, noTerminal)
		},
	}

	cmd.Flags().StringVar(&teacherSession, "teacher-session", "", "teacher session id to join (live mode)")
	cmd.Flags().BoolVar(&noTerminal, "no-terminal", false, "skip the remote terminal, use a command prompt instead")
	return cmd
}

// escapeView wraps the raw terminal and reserves Ctrl-] as the local
// detach key, telnet style. Everything else passes through to the remote
// shell untouched.
type escapeView struct {
	interfaces.TerminalView
	detach func()
}

func (v *escapeView) OnInput(fn func(data []byte)) {
	v.TerminalView.OnInput(func(data []byte) {
		if i := bytes.IndexByte(data, 0x1d); i >= 0 {
			if i > 0 {
				fn(data[:i])
			}
			v.detach()
			return
		}
		fn(data)
	})
}

func runWorkspace(lessonID, teacherSession string, noTerminal bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	token, err := resolveToken(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("no usable credential for %s, run 'codelab login' first: %w", cfg.Backend.BaseURL, err)
	}

	style, err := st.TutorStyle(ctx)
	if err != nil {
		style = types.StyleSocratic
	}

	backend, err := newBackend(cfg, token)
	if err != nil {
		return err
	}

	useTTY := !noTerminal && term.IsTerminal(int(os.Stdin.Fd()))

	// Raw mode leaves the cursor where the remote shell put it, so local
	// status lines need the explicit carriage return.
	eol := "\n"
	if useTTY {
		eol = "\r\n"
	}
	status := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, format+eol, args...)
	}

	var view interfaces.TerminalView
	var tty *terminal.TTY
	if useTTY {
		tty, err = terminal.NewTTY(os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to take over the terminal: %w", err)
		}
		defer tty.Close()
		view = &escapeView{TerminalView: tty, detach: cancel}
	}

	navigate := make(chan struct{}, 1)
	deps := workspace.Deps{
		Backend: backend,
		NewSession: func() interfaces.Transport {
			return transport.NewSession(cfg.Backend.SocketURL)
		},
		Store:          st,
		Style:          style,
		NavigateDelay:  cfg.Workspace.NavigateDelay,
		ResizeDebounce: cfg.Workspace.ResizeDebounce,
		Events: workspace.Events{
			OnNotice:       func(text string) { status("** %s", text) },
			OnErrorMessage: func(text string) { status("!! %s", text) },
			OnHint:         func(text string) { status("hint: %s", text) },
			OnTestResult: func(result types.TestRunResult) {
				status("tests: %d/%d passed", result.Passed, result.Total)
				if result.RawOutput != "" {
					status("%s", strings.ReplaceAll(result.RawOutput, "\n", eol))
				}
			},
			OnNavigateAway: func() {
				select {
				case navigate <- struct{}{}:
				default:
				}
			},
		},
	}
	if view != nil {
		deps.View = view
	}

	controller := workspace.NewController(deps)
	defer controller.Shutdown()

	if err := controller.Load(ctx, lessonID, token, teacherSession); err != nil {
		if msg := controller.ErrorMessage(); msg != "" {
			status("failed to load lesson %s: %s", lessonID, msg)
		}
		return err
	}

	lesson := controller.Lesson()
	status("lesson: %s", lesson.Title)
	if prior := controller.PriorSubmission(); prior != nil && prior.Grade != nil {
		status("previous attempt: %.0f%%", *prior.Grade*100)
	}
	desc := controller.SessionDescriptor()
	if desc.Mode == types.ModeLive {
		status("live session joined, edits are shared with the teacher")
	}

	scratch := cfg.Workspace.ScratchDir
	if scratch == "" {
		scratch, err = os.MkdirTemp("", "codelab-"+lessonID+"-")
		if err != nil {
			return fmt.Errorf("failed to create scratch directory: %w", err)
		}
		defer os.RemoveAll(scratch)
	}
	w, err := watcher.New(scratch, cfg.Workspace.WatchDebounce)
	if err != nil {
		return fmt.Errorf("failed to watch scratch directory: %w", err)
	}
	defer w.Close()
	if err := w.Materialize(controller.Files()); err != nil {
		return fmt.Errorf("failed to materialize workspace files: %w", err)
	}
	status("files in %s", scratch)
	if useTTY {
		status("terminal attached, Ctrl-] detaches")
	}

	var prompts <-chan string
	if !useTTY {
		prompts = promptLoop(ctx, os.Stdin)
	}

	for {
		select {
		case <-ctx.Done():
			return finalSave(controller, status)

		case <-navigate:
			status("lesson complete")
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			applyEdit(controller, ev, status)

		case line, ok := <-prompts:
			if !ok {
				return finalSave(controller, status)
			}
			if done := runPrompt(ctx, controller, w, line, status); done {
				return nil
			}
		}
	}
}

// applyEdit routes one on-disk edit into the workspace: known filenames
// become the active file and take the new content, unknown ones are added
// to the file set first.
func applyEdit(c *workspace.Controller, ev watcher.Event, status func(string, ...interface{})) {
	for _, f := range c.Files() {
		if f.Filename != ev.Filename {
			continue
		}
		if active := c.ActiveFile(); active == nil || active.ID != f.ID {
			c.OnSwitchFile(f.ID)
		}
		c.OnContentChange(ev.Content)
		return
	}

	f, err := c.AddFile(ev.Filename)
	if err != nil {
		status("ignoring %s: %v", ev.Filename, err)
		return
	}
	c.OnSwitchFile(f.ID)
	c.OnContentChange(ev.Content)
	status("added %s", ev.Filename)
}

func finalSave(c *workspace.Controller, status func(string, ...interface{})) error {
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Save(saveCtx); err != nil {
		status("final save failed: %v", err)
	}
	return nil
}

func promptLoop(ctx context.Context, in *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// runPrompt handles one command in no-terminal mode. Returns true when the
// session should end.
func runPrompt(ctx context.Context, c *workspace.Controller, w *watcher.Watcher, line string, status func(string, ...interface{})) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "files":
		active := c.ActiveFile()
		for _, f := range c.Files() {
			marker := "  "
			if active != nil && f.ID == active.ID {
				marker = "* "
			}
			status("%s%s", marker, f.Filename)
		}

	case "rm":
		if len(args) != 1 {
			status("usage: rm <filename>")
			return false
		}
		for _, f := range c.Files() {
			if f.Filename == args[0] {
				if err := c.RemoveFile(f.ID); err != nil {
					status("!! %v", err)
				} else if err := os.Remove(filepath.Join(w.Dir(), args[0])); err != nil && !os.IsNotExist(err) {
					status("!! %v", err)
				}
				return false
			}
		}
		status("no such file: %s", args[0])

	case "save":
		if err := c.Save(ctx); err != nil {
			status("!! %v", err)
		}

	case "submit":
		if _, err := c.Submit(ctx); err != nil {
			status("!! %v", err)
		}

	case "test":
		c.RunTests(ctx)

	case "hint":
		selection := strings.Join(args, " ")
		if selection == "" {
			if active := c.ActiveFile(); active != nil {
				selection = active.Content
			}
		}
		if _, err := c.GetHint(ctx, selection); err != nil {
			status("!! %v", err)
		}

	case "feedback":
		text, err := c.GetFeedback(ctx)
		if err != nil {
			status("!! %v", err)
		} else {
			status("feedback: %s", text)
		}

	default:
		status("commands: files, rm, save, submit, test, hint, feedback, quit")
	}
	return false
}
