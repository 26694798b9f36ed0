package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/features/aboutpoints"
	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	BaseURL string
	Timeout time.Duration
	Format  string
	Pretty  bool
	Verbose bool

	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "aboutctl",
		Short:        "Read and edit the About Us points record",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Print the current record
  aboutctl show

  # Change the title and append a point
  aboutctl edit --title "Who we are" --add-point "We ship games"

  # Replace point 2 and deactivate
  aboutctl edit --set-point 1="Rewritten" --status inactive
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.Format != "json" && app.Format != "text" {
			return writeErr(cmd, fmt.Errorf("unknown --format %q (json|text)", app.Format))
		}
		if app.Verbose {
			cfg := zap.NewDevelopmentConfig()
			cfg.OutputPaths = []string{"stderr"}
			l, err := cfg.Build()
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log = l
		} else {
			app.log = zap.NewNop()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "api", envOr("ABOUTADMIN_API_BASE_URL", "http://localhost:3006"), "Base URL of the About Us backend")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", aboutapi.DefaultTimeout, "Request timeout")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ABOUTADMIN_FORMAT", "text"), "Output format (json|text)")
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests and diagnostics to stderr")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return writeErr(c, err)
	})

	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newEditCmd(app))

	return cmd
}

// newForm builds a form whose diagnostics go to the verbose log and to rec.
func (app *App) newForm(rec *diaglog.Recorder) *aboutpoints.Form {
	api := aboutapi.New(app.BaseURL, app.log, aboutapi.WithTimeout(app.Timeout))
	sink := diaglog.Multi(diaglog.New(nil, app.log, diaglog.ModeLog), rec)
	return aboutpoints.NewForm(api, sink)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// recordOut is the JSON shape printed by show and edit.
type recordOut struct {
	ID     string   `json:"_id,omitempty"`
	Title  string   `json:"title"`
	Points []string `json:"points"`
	Status string   `json:"status"`
}

func toRecordOut(s aboutpoints.Snapshot) recordOut {
	return recordOut{ID: s.ID, Title: s.Title, Points: s.Points, Status: string(s.Status)}
}

func writeOut(cmd *cobra.Command, app *App, snap aboutpoints.Snapshot, extra map[string]any) error {
	w := cmd.OutOrStdout()
	if app.Format == "text" {
		return writeText(w, snap)
	}

	out := map[string]any{"data": toRecordOut(snap)}
	for k, v := range extra {
		out[k] = v
	}
	enc := json.NewEncoder(w)
	if app.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func writeText(w io.Writer, snap aboutpoints.Snapshot) error {
	id := snap.ID
	if id == "" {
		id = "(none)"
	}
	if _, err := fmt.Fprintf(w, "id:     %s\ntitle:  %s\nstatus: %s\npoints:\n", id, snap.Title, snap.Status); err != nil {
		return err
	}
	for i, p := range snap.Points {
		if _, err := fmt.Fprintf(w, "  %d. %s\n", i, p); err != nil {
			return err
		}
	}
	return nil
}

// Run executes cmd and prints any error that was not already written to
// its stderr.
func Run(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	var rep *reportedError
	if err != nil && !errors.As(err, &rep) {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	}
	return err
}

// reportedError marks an error whose message is already on stderr.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return &reportedError{err: err}
}
