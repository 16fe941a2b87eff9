package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scrollreel/internal/api"
	"scrollreel/internal/frames"
)

func newAnimationCommands(ctx *commandContext) []*cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an empty animation",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			anim, err := client.CreateAnimation(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return emit(ctx, cmd, anim, func() string {
				return fmt.Sprintf("Created animation %d (%s)", anim.ID, anim.DisplayTitle())
			})
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List animations, most recently changed first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			anims, err := client.ListAnimations(cmd.Context())
			if err != nil {
				return err
			}
			return emit(ctx, cmd, anims, func() string {
				if len(anims) == 0 {
					return "No animations"
				}
				return renderAnimationTable(anims)
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an animation and its frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			detail, err := client.GetAnimation(cmd.Context(), id)
			if err != nil {
				return err
			}
			return emit(ctx, cmd, detail, func() string { return renderAnimationDetail(detail) })
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change an animation's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			anim, err := client.UpdateTitle(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return emit(ctx, cmd, anim, func() string {
				return fmt.Sprintf("Animation %d is now %s", anim.ID, anim.DisplayTitle())
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an animation and all of its frames",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.DeleteAnimation(cmd.Context(), id)
			if err != nil {
				return err
			}
			return emit(ctx, cmd, resp, func() string {
				lines := []string{fmt.Sprintf("Deleted animation %d (%d frames removed)", id, resp.FramesRemoved)}
				for _, w := range resp.Warnings {
					lines = append(lines, "warning: "+w)
				}
				return strings.Join(lines, "\n")
			})
		},
	}

	var easing string
	var loops int
	settingsCmd := &cobra.Command{
		Use:   "settings <id>",
		Short: "Change easing or loop count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			var easingPtr *string
			var loopsPtr *int
			if cmd.Flags().Changed("easing") {
				easingPtr = &easing
			}
			if cmd.Flags().Changed("loops") {
				loopsPtr = &loops
			}
			if easingPtr == nil && loopsPtr == nil {
				return fmt.Errorf("nothing to change; pass --easing and/or --loops")
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.UpdateSettings(cmd.Context(), id, easingPtr, loopsPtr)
			if err != nil {
				return err
			}
			return emit(ctx, cmd, resp, func() string {
				lines := []string{fmt.Sprintf("Animation %d: easing %s, %d loop(s)", id, resp.Animation.Easing, resp.Animation.LoopCount)}
				for _, field := range resp.Rejected {
					lines = append(lines, fmt.Sprintf("rejected %s: %s", field, settingsHint(field)))
				}
				return strings.Join(lines, "\n")
			})
		},
	}
	settingsCmd.Flags().StringVar(&easing, "easing", "", "Easing curve: linear, ease-in, ease-out, ease-in-out")
	settingsCmd.Flags().IntVar(&loops, "loops", frames.DefaultLoopCount, fmt.Sprintf("Loop count (%d-%d)", frames.MinLoopCount, frames.MaxLoopCount))

	embedCmd := &cobra.Command{
		Use:   "embed <id>",
		Short: "Print the HTML that embeds an animation in a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAnimationID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			html, err := client.Embed(cmd.Context(), id)
			if err != nil {
				return err
			}
			if html == "" && !ctx.jsonOutput() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Animation %d has no frames; nothing to embed\n", id)
				return nil
			}
			return emit(ctx, cmd, api.EmbedResponse{HTML: html}, func() string { return strings.TrimRight(html, "\n") })
		},
	}

	return []*cobra.Command{createCmd, listCmd, showCmd, renameCmd, deleteCmd, settingsCmd, embedCmd}
}

func settingsHint(field string) string {
	switch field {
	case "easing":
		names := make([]string, 0, len(frames.Easings()))
		for _, e := range frames.Easings() {
			names = append(names, string(e))
		}
		return "expected one of " + strings.Join(names, ", ")
	case "loopCount":
		return fmt.Sprintf("expected %d-%d", frames.MinLoopCount, frames.MaxLoopCount)
	default:
		return "invalid value"
	}
}

func renderAnimationTable(anims []api.Animation) string {
	rows := make([][]string, 0, len(anims))
	for _, a := range anims {
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			a.DisplayTitle(),
			strconv.Itoa(a.FrameCount),
			a.Dimensions().String(),
			a.Easing,
			strconv.Itoa(a.LoopCount),
			formatTimestamp(a.UpdatedAt),
		})
	}
	return renderTable("",
		[]string{"ID", "Title", "Frames", "Size", "Easing", "Loops", "Updated"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderAnimationDetail(detail api.AnimationDetail) string {
	a := detail.Animation
	title := cases.Title(language.English)
	lines := []string{
		fmt.Sprintf("Animation %d: %s", a.ID, a.DisplayTitle()),
		fmt.Sprintf("  Frames:  %d", a.FrameCount),
		fmt.Sprintf("  Size:    %s", a.Dimensions()),
		fmt.Sprintf("  Easing:  %s", title.String(strings.ReplaceAll(a.Easing, "-", " "))),
		fmt.Sprintf("  Loops:   %d", a.LoopCount),
		fmt.Sprintf("  Created: %s", formatTimestamp(a.CreatedAt)),
		fmt.Sprintf("  Updated: %s", formatTimestamp(a.UpdatedAt)),
	}
	if len(detail.Frames) == 0 {
		return strings.Join(append(lines, "", "No frames uploaded"), "\n")
	}
	rows := make([][]string, 0, len(detail.Frames))
	for _, f := range detail.Frames {
		rows = append(rows, []string{strconv.Itoa(f.Ordinal), f.URL})
	}
	table := renderTable("Frames", []string{"#", "URL"}, rows, []columnAlignment{alignRight, alignLeft})
	return strings.Join(append(lines, "", table), "\n")
}
