package logo

import (
	"fmt"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGreen = "\033[38;2;46;204;113m" // #2ECC71 - verified green
	colorCyan  = "\033[38;2;52;152;219m" // #3498DB - gate cyan
	colorWhite = "\033[97m"
)

// PrintCredGateLogo prints the CredGate startup banner with colors
func PrintCredGateLogo() {
	// Logo design: CRED in green, GATE in cyan
	logo := []string{
		"",
		colorGreen + ` ######  ######   ######## ######` + colorCyan + `     ######     ###    ######## ########` + colorReset,
		colorGreen + `##    ## ##   ##  ##       ##    ##` + colorCyan + `  ##    ##   ## ##      ##    ##` + colorReset,
		colorGreen + `##       ##   ##  ##       ##    ##` + colorCyan + `  ##        ##   ##     ##    ##` + colorReset,
		colorGreen + `##       ######   ######   ##    ##` + colorCyan + `  ##  #### ##     ##    ##    ######` + colorReset,
		colorGreen + `##       ##  ##   ##       ##    ##` + colorCyan + `  ##    ## #########    ##    ##` + colorReset,
		colorGreen + `##    ## ##   ##  ##       ##    ##` + colorCyan + `  ##    ## ##     ##    ##    ##` + colorReset,
		colorGreen + ` ######  ##    ## ######## ######` + colorCyan + `     ######  ##     ##    ##    ########` + colorReset,
		"",
		colorWhite + `          news credibility gate - classify, corroborate, explain` + colorReset,
		"",
	}

	for _, line := range logo {
		fmt.Println(line)
	}
}
