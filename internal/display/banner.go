package display

import (
	"fmt"
	"os"

	"github.com/backmassage/webpmaster/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, `__        __   _     ____  __  __           _
\ \      / /__| |__ |  _ \|  \/  | __ _ ___| |_ ___ _ __
 \ \ /\ / / _ \ '_ \| |_) | |\/| |/ _`+"`"+` / __| __/ _ \ '__|
  \ V  V /  __/ |_) |  __/| |  | | (_| \__ \ ||  __/ |
   \_/\_/ \___|_.__/|_|   |_|  |_|\__,_|___/\__\___|_|
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
