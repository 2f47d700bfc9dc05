package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	heavyRule = "═══════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a boxed command title with key/value metadata
func PrintHeader(w io.Writer, title string, meta ...[2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, heavyRule)
	fmt.Fprintf(w, "  %s\n", title)
	if len(meta) > 0 {
		fmt.Fprintln(w, lightRule)
		for _, kv := range meta {
			fmt.Fprintf(w, "  %-10s: %s\n", kv[0], kv[1])
		}
	}
	fmt.Fprintln(w, heavyRule)
}

// KV builds one header metadata row
func KV(key, value string) [2]string {
	return [2]string{key, value}
}

// PrintTable prints tab-aligned rows under a header row
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(headers, "\t")+"\t")
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

// PrintDone prints the completion line
func PrintDone(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✅ "+format+"\n", args...)
}

// formatFloat trims to two decimals
func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
