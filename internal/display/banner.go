// Package display holds small presentation helpers shared by the CLI and
// the rename pipeline.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/clipnamer/internal/term"
)

const banner = `      _ _
  ___| (_)_ __  _ __   __ _ _ __ ___   ___ _ __
 / __| | | '_ \| '_ \ / _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \ '__|
| (__| | | |_) | | | | (_| | | | | | |  __/ |
 \___|_|_| .__/|_| |_|\__,_|_| |_| |_|\___|_|
         |_|
`

// PrintBanner writes the banner and version line, in magenta when colors
// are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Magenta+banner+term.NC)
	fmt.Fprintf(w, "  v%s\n\n", version)
}
