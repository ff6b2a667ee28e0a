package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codelab/internal/transport"
	"codelab/internal/workspace"
	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

func newLessonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "One-shot lesson operations",
	}

	cmd.AddCommand(newLessonSubmitCommand())
	cmd.AddCommand(newLessonTestCommand())
	cmd.AddCommand(newLessonHintCommand())
	cmd.AddCommand(newLessonFeedbackCommand())
	return cmd
}

// loadHeadless stands a workspace up without a terminal or a scratch
// directory: fetch, overlay the local draft if one exists, and hand the
// controller back for a single operation.
func loadHeadless(ctx context.Context, lessonID string) (*workspace.Controller, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	token, err := resolveToken(ctx, st, cfg)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("no usable credential, run 'codelab login' first: %w", err)
	}
	style, err := st.TutorStyle(ctx)
	if err != nil {
		style = types.StyleSocratic
	}
	backend, err := newBackend(cfg, token)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	controller := workspace.NewController(workspace.Deps{
		Backend: backend,
		NewSession: func() interfaces.Transport {
			return transport.NewSession(cfg.Backend.SocketURL)
		},
		Store:          st,
		Style:          style,
		NavigateDelay:  cfg.Workspace.NavigateDelay,
		ResizeDebounce: cfg.Workspace.ResizeDebounce,
		Events: workspace.Events{
			OnNotice:       func(text string) { fmt.Fprintf(os.Stderr, "** %s\n", text) },
			OnErrorMessage: func(text string) { fmt.Fprintf(os.Stderr, "!! %s\n", text) },
		},
	})
	cleanup := func() {
		controller.Shutdown()
		st.Close()
	}

	if err := controller.Load(ctx, lessonID, token, ""); err != nil {
		cleanup()
		return nil, nil, err
	}

	if draft, derr := st.Draft(ctx, lessonID); derr == nil {
		overlayDraft(controller, draft)
	} else if !errors.Is(derr, interfaces.ErrDraftNotFound) {
		fmt.Fprintf(os.Stderr, "!! draft unavailable: %v\n", derr)
	}

	return controller, cleanup, nil
}

// overlayDraft replays locally saved content over the fetched workspace,
// matching by filename. Draft files the server never saw are added.
func overlayDraft(c *workspace.Controller, draft []types.WorkspaceFile) {
	for _, d := range draft {
		matched := false
		for _, f := range c.Files() {
			if f.Filename != d.Filename {
				continue
			}
			c.OnSwitchFile(f.ID)
			c.OnContentChange(d.Content)
			matched = true
			break
		}
		if matched {
			continue
		}
		if f, err := c.AddFile(d.Filename); err == nil {
			c.OnSwitchFile(f.ID)
			c.OnContentChange(d.Content)
		}
	}
}

func newLessonSubmitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <lesson-id>",
		Short: "Submit the current solution for grading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			controller, cleanup, err := loadHeadless(ctx, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := controller.Submit(ctx)
			if err != nil {
				return err
			}
			switch outcome.Status {
			case types.SubmitStatusCorrect:
				if outcome.Grade != nil {
					fmt.Printf("correct, grade %.0f%%\n", *outcome.Grade*100)
				} else {
					fmt.Println("correct")
				}
			case types.SubmitStatusHint:
				fmt.Printf("not yet: %s\n", outcome.Hint)
			}
			return nil
		},
	}
}

func newLessonTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <lesson-id>",
		Short: "Run the lesson's tests against the current solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			controller, cleanup, err := loadHeadless(ctx, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			result := controller.RunTests(ctx)
			fmt.Printf("%d/%d passed\n", result.Passed, result.Total)
			if result.RawOutput != "" {
				fmt.Println(result.RawOutput)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d test(s) failing", result.Failed)
			}
			return nil
		},
	}
}

func newLessonHintCommand() *cobra.Command {
	var selection string

	cmd := &cobra.Command{
		Use:   "hint <lesson-id>",
		Short: "Ask for an AI hint on a code selection",
		Long: "Ask for an AI hint on a code selection. The selection comes from\n" +
			"--selection, or from stdin when piped; with neither, the active\n" +
			"file's content is used.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			controller, cleanup, err := loadHeadless(ctx, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			if selection == "" {
				if stat, serr := os.Stdin.Stat(); serr == nil && stat.Mode()&os.ModeCharDevice == 0 {
					data, rerr := io.ReadAll(os.Stdin)
					if rerr != nil {
						return rerr
					}
					selection = string(data)
				}
			}
			if strings.TrimSpace(selection) == "" {
				if active := controller.ActiveFile(); active != nil {
					selection = active.Content
				}
			}

			hint, err := controller.GetHint(ctx, selection)
			if err != nil {
				if errors.Is(err, workspace.ErrEmptySelection) {
					return fmt.Errorf("nothing selected, give me some code to look at")
				}
				return err
			}
			fmt.Println(hint)
			return nil
		},
	}

	cmd.Flags().StringVar(&selection, "selection", "", "code to ask about")
	return cmd
}

func newLessonFeedbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <lesson-id>",
		Short: "Ask for conceptual feedback on the whole solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			controller, cleanup, err := loadHeadless(ctx, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			feedback, err := controller.GetFeedback(ctx)
			if err != nil {
				return err
			}
			fmt.Println(feedback)
			return nil
		},
	}
}
