// Package ui renders the trongrind CLI's banner, device list and hit
// stream. It is adapted from the teacher's multi-network console package,
// trimmed to the single GPU-search use case this tool implements: no
// prefix/suffix prompts, no per-network banners, one scoring predicate's
// hits per run.
package ui

import (
	"fmt"
	"time"

	"github.com/trongrind/trongrind/pkg/aggregator"
	"github.com/trongrind/trongrind/pkg/device"
	"github.com/trongrind/trongrind/pkg/vanity"
)

// ANSI color codes.
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorPurple = "\033[35m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// ClearScreen clears the terminal.
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}

// PrintWelcomeBanner shows the welcome screen.
func PrintWelcomeBanner(version string) {
	fmt.Println()
	fmt.Printf("%s%s", ColorCyan, ColorBold)
	fmt.Println("  ╔══════════════════════════════════════════════════════════╗")
	fmt.Println("  ║  ████████╗██████╗  ██████╗ ███╗   ██╗ ██████╗ ██████╗    ║")
	fmt.Println("  ║  ╚══██╔══╝██╔══██╗██╔═══██╗████╗  ██║██╔════╝ ██╔══██╗   ║")
	fmt.Println("  ║     ██║   ██████╔╝██║   ██║██╔██╗ ██║██║  ███╗██████╔╝   ║")
	fmt.Println("  ║     ██║   ██╔══██╗██║   ██║██║╚██╗██║██║   ██║██╔══██╗   ║")
	fmt.Println("  ║     ██║   ██║  ██║╚██████╔╝██║ ╚████║╚██████╔╝██║  ██║   ║")
	fmt.Println("  ║     ╚═╝   ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═══╝ ╚═════╝ ╚═╝  ╚═╝   ║")
	fmt.Println("  ╠══════════════════════════════════════════════════════════╣")
	fmt.Printf("  ║%s    GPU Vanity Address Search %s• v%s%s                     ║\n", ColorYellow, ColorDim, version, ColorCyan+ColorBold)
	fmt.Println("  ╚══════════════════════════════════════════════════════════╝")
	fmt.Print(ColorReset)
	fmt.Println()
}

// PrintGeneratedSeedKey reports an auto-generated seed key pair, printed
// once so the caller can recover it; hits found in this run derive their
// full private keys from it.
func PrintGeneratedSeedKey(pubHex, privHex string) {
	fmt.Printf("    %s⚠ No seed key given — generated one for this run%s\n", ColorYellow, ColorReset)
	fmt.Printf("    %sSeed public key:%s  %s\n", ColorDim, ColorReset, pubHex)
	fmt.Printf("    %sSeed private key:%s %s%s%s\n\n", ColorDim, ColorReset, ColorPurple, privHex, ColorReset)
}

// PrintDeviceList shows every device the dispatcher will drive, annotating
// devices that had a kernel cache file when they were enumerated.
func PrintDeviceList(devices []device.Identity) {
	fmt.Printf("    %sDevices%s\n", ColorCyan+ColorBold, ColorReset)
	for _, d := range devices {
		cached := ""
		if d.Cached {
			cached = fmt.Sprintf(" %s[cached]%s", ColorGreen, ColorReset)
		}
		fmt.Printf("      %s#%d%s %s%s\n", ColorDim, d.Index, ColorReset, d.Name, cached)
	}
	fmt.Println()
}

// PrintSearchInfo displays the active scoring mode and the seed public key
// the search is rooted at.
func PrintSearchInfo(mode vanity.Mode, seedPubHex string) {
	fmt.Printf("    %s🚀 SEARCHING%s %smode=%s%s seed=%s...%s\n\n",
		ColorGreen+ColorBold, ColorReset,
		ColorCyan, mode.Name, ColorReset,
		ColorDim, seedPubHex[:16]+ColorReset)
}

// PrintHit reports one accepted hit as it arrives.
func PrintHit(address string, hit aggregator.Hit, elapsed time.Duration) {
	fmt.Printf("\n    %s%s✨ HIT%s %sscore=%d%s device=%s round=%d\n",
		ColorGreen, ColorBold, ColorReset, ColorYellow, hit.Score, ColorReset, hit.DeviceName, hit.Round)
	fmt.Printf("       %s%s%s\n", ColorGreen, address, ColorReset)

	label := "Private key"
	if hit.OffsetOnly {
		label = "Offset (add to your own key)"
	}
	fmt.Printf("    %s🔑 %s%s\n", ColorPurple+ColorBold, label, ColorReset)
	fmt.Printf("       %s%s%s\n", ColorYellow, hit.PrivateKeyHex, ColorReset)
	fmt.Printf("    %s⏱  %s%s\n\n", ColorDim, FormatDuration(elapsed), ColorReset)
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
