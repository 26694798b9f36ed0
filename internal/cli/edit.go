package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dalemusser/aboutadmin/internal/app/features/aboutpoints"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"github.com/spf13/cobra"
)

type editOpts struct {
	title  string
	points []string
	add    []string
	remove []int
	set    []string
	status string
	dryRun bool
}

func newEditCmd(app *App) *cobra.Command {
	opts := &editOpts{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Load the record, apply edits, and submit it",
		Long: strings.TrimSpace(`
Edits are applied in this order: --title, --point (replaces every point),
--set-point, --remove-point (in the order given, each index relative to the
list at that moment), --add-point, --status. The result is submitted as a
full replacement of the record.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := parseSetPoints(opts.set)
			if err != nil {
				return writeErr(cmd, err)
			}
			status := models.Status(opts.status)
			if cmd.Flags().Changed("status") && !status.Valid() {
				return writeErr(cmd, fmt.Errorf("invalid --status %q (active|inactive)", opts.status))
			}

			rec := &diaglog.Recorder{}
			form := app.newForm(rec)

			if res := form.Load(cmd.Context()); !res.OK {
				return writeErr(cmd, fmt.Errorf("load failed: %s", res.Message))
			}

			if cmd.Flags().Changed("title") {
				form.SetTitle(opts.title)
			}
			if cmd.Flags().Changed("point") {
				replacePoints(form, opts.points)
			}
			for _, s := range sets {
				if s.index >= len(form.Points()) {
					return writeErr(cmd, fmt.Errorf("--set-point index %d out of range (have %d points)", s.index, len(form.Points())))
				}
				form.UpdatePoint(s.index, s.value)
			}
			for _, i := range opts.remove {
				if i < 0 || i >= len(form.Points()) {
					return writeErr(cmd, fmt.Errorf("--remove-point index %d out of range (have %d points)", i, len(form.Points())))
				}
				form.RemovePoint(i)
			}
			for _, p := range opts.add {
				form.AddPoint()
				form.UpdatePoint(len(form.Points())-1, p)
			}
			if cmd.Flags().Changed("status") {
				form.SetStatus(status)
			}

			if opts.dryRun {
				return writeOut(cmd, app, form.Snapshot(), map[string]any{"dryRun": true})
			}

			res := form.Submit(cmd.Context())
			if !res.OK {
				return writeErr(cmd, fmt.Errorf("submit failed: %s", res.Message))
			}

			extra := map[string]any{}
			if ev, ok := rec.Last(); ok && ev.RequestID != "" {
				extra["requestId"] = ev.RequestID
			}
			return writeOut(cmd, app, form.Snapshot(), extra)
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "New title")
	cmd.Flags().StringArrayVar(&opts.points, "point", nil, "Replace all points (repeatable, order kept)")
	cmd.Flags().StringArrayVar(&opts.add, "add-point", nil, "Append a point (repeatable)")
	cmd.Flags().IntSliceVar(&opts.remove, "remove-point", nil, "Remove the point at index (repeatable)")
	cmd.Flags().StringArrayVar(&opts.set, "set-point", nil, "Replace one point: INDEX=TEXT (repeatable)")
	cmd.Flags().StringVar(&opts.status, "status", "", "New status (active|inactive)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the edited record without submitting")

	return cmd
}

type setPoint struct {
	index int
	value string
}

func parseSetPoints(raw []string) ([]setPoint, error) {
	out := make([]setPoint, 0, len(raw))
	for _, r := range raw {
		idx, val, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set-point %q: want INDEX=TEXT", r)
		}
		n, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid --set-point index %q", idx)
		}
		out = append(out, setPoint{index: n, value: val})
	}
	return out, nil
}

func replacePoints(form *aboutpoints.Form, points []string) {
	for len(form.Points()) > 0 {
		form.RemovePoint(0)
	}
	for i, p := range points {
		form.AddPoint()
		form.UpdatePoint(i, p)
	}
}
