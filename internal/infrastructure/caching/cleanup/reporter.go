// Package cleanup provides ascii reporter
package cleanup

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/AtRiskMedia/outfitstack-go/internal/infrastructure/caching/interfaces"
)

const (
	cyan        = "\033[38;2;86;182;194m"  // One Dark Cyan: #56B6C2
	cyanBright  = "\033[38;2;97;228;240m"  // Brighter Cyan: #61E4F0
	dimCyan     = "\033[38;2;47;91;102m"   // Dim Cyan: #2F5B66
	grey        = "\033[38;2;110;118;129m" // Brighter Grey: #6E7681
	dimGrey     = "\033[38;2;75;82;99m"    // Darker Grey: #4B5263
	success     = "\033[38;2;62;130;144m"  // Dim Cyan: #3E8290
	warning     = "\033[38;2;229;192;123m" // One Dark Yellow: #E5C07B
	errorRed    = "\033[38;2;224;108;117m" // One Dark Red: #E06C75
	white       = "\033[38;2;171;178;191m" // One Dark Foreground: #ABB2BF
	whiteBright = "\033[38;2;220;225;230m" // Brighter White
	purple      = "\033[38;2;198;120;221m" // One Dark Purple: #C678DD
	dimPurple   = "\033[38;2;142;87;158m"  // Dim Purple: #8E579E
	reset       = "\033[0m"
	bold        = "\033[1m"
)

type Reporter struct {
	cache interfaces.Cache
	out   io.Writer
}

func NewReporter(cache interfaces.Cache) *Reporter {
	return &Reporter{cache: cache, out: os.Stdout}
}

// SetOutput redirects the reporter, mainly for tests.
func (r *Reporter) SetOutput(w io.Writer) {
	r.out = w
}

func (r *Reporter) Print(s string) {
	fmt.Fprint(r.out, s)
}

func (r *Reporter) LogStage(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogSuccess(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s✦ %s%s%s\n", success, bold, white, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogError(message string, err error) {
	fmt.Fprintf(r.out, "%s%s✖ ERROR: %s%s: %v%s\n", bold, errorRed, grey, message, err, reset)
}

func (r *Reporter) LogWarning(message string, args ...any) {
	fmt.Fprintf(r.out, "%s%s⚠ WARNING: %s%s%s\n", bold, warning, grey, fmt.Sprintf(message, args...), reset)
}

func (r *Reporter) LogInfo(message string, args ...any) {
	fmt.Fprintf(r.out, "%s▶ %s%s%s\n", dimGrey, grey, fmt.Sprintf(message, args...), reset)
}

// GenerateOwnerReport renders a two-line summary of one owner's cache.
func (r *Reporter) GenerateOwnerReport(ownerID string) string {
	var report strings.Builder
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 MST")
	stats := r.cache.GetOwnerStats(ownerID)

	report.WriteString(fmt.Sprintf("%s%s▓ %s | Owner: %s%s %s\n", bold, dimCyan, timestamp, whiteBright, ownerID, reset))

	var line strings.Builder
	if stats.Items > 0 {
		line.WriteString(fmt.Sprintf("%s✦ %sitems: %s%d%s", success, grey, cyanBright, stats.Items, reset))
	} else {
		line.WriteString(fmt.Sprintf("%s○ %sitems: %s--%s", dimGrey, grey, dimGrey, reset))
	}
	line.WriteString("  ")
	if stats.OutfitsReady {
		line.WriteString(fmt.Sprintf("%s✦ %soutfits: %s%d%s", success, grey, cyan, stats.Outfits, reset))
	} else {
		line.WriteString(fmt.Sprintf("%s✖ %soutfits: %sNOT LOADED%s", errorRed, grey, errorRed, reset))
	}
	report.WriteString(line.String() + "\n")

	report.WriteString(fmt.Sprintf("%s✦ activity:%s %shits:%s%d %smisses:%s%d %shit-rate:%s%.0f%%%s\n",
		purple, reset,
		dimPurple, white, stats.Hits,
		dimPurple, white, stats.Misses,
		dimPurple, white, stats.HitRate*100, reset))

	return report.String()
}
