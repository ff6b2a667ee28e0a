package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codelab/internal/api"
)

func newCourseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Authoring operations for course creators",
	}

	cmd.AddCommand(newCourseCreateCommand())
	cmd.AddCommand(newChapterCreateCommand())
	cmd.AddCommand(newLessonCreateCommand())
	cmd.AddCommand(newLessonPublishCommand())
	return cmd
}

func authoringClient(ctx context.Context) (*api.Client, func(), error) {
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
	client, err := newBackend(cfg, token)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return client, func() { st.Close() }, nil
}

func newCourseCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, cleanup, err := authoringClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := client.CreateCourse(ctx, args[0], description)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "course description")
	return cmd
}

func newChapterCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-chapter <course-id> <title>",
		Short: "Add a chapter to a course",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, cleanup, err := authoringClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := client.CreateChapter(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
}

func newLessonCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add-lesson <chapter-id> <title>",
		Short: "Add a lesson to a chapter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, cleanup, err := authoringClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := client.CreateLesson(ctx, args[0], args[1], description)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "lesson description")
	return cmd
}

func newLessonPublishCommand() *cobra.Command {
	var unpublish bool

	cmd := &cobra.Command{
		Use:   "publish <lesson-id>",
		Short: "Publish or unpublish a lesson",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			client, cleanup, err := authoringClient(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			published := !unpublish
			state := "draft"
			if published {
				state = "published"
			}

			// The toggle reads as done the moment it is pressed; a failed
			// call rolls the line back.
			err = api.Optimistic(
				func() { fmt.Printf("%s: %s\n", args[0], state) },
				func() { fmt.Printf("%s: reverted\n", args[0]) },
				func() error { return client.SetLessonPublished(ctx, args[0], published) },
			)
			return err
		},
	}

	cmd.Flags().BoolVar(&unpublish, "unpublish", false, "take the lesson back to draft")
	return cmd
}
