package cli

import (
	"fmt"

	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the About Us record (missing fields shown with their defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := &diaglog.Recorder{}
			form := app.newForm(rec)

			if res := form.Load(cmd.Context()); !res.OK {
				return writeErr(cmd, fmt.Errorf("load failed: %s", res.Message))
			}
			return writeOut(cmd, app, form.Snapshot(), nil)
		},
	}
}
