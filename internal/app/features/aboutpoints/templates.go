// internal/app/features/aboutpoints/templates.go
package aboutpoints

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "aboutpoints",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
