package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/charlesng35/boardsync/internal/layout"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

func printSection(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	fmt.Fprintln(w, value)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLayout(w io.Writer, boardName string, sections []layout.Section) {
	printSection(w, "Board "+boardName)
	if len(sections) == 0 {
		_, _ = dimColor.Fprintln(w, "  (no sections)")
		return
	}

	for _, section := range sections {
		fmt.Fprintf(w, "  [%s] %s", section.Kind, section.ID)
		switch {
		case section.Category != nil:
			fmt.Fprintf(w, " %q", section.Category.Name)
		case section.Dynamic != nil:
			d := section.Dynamic
			fmt.Fprintf(w, " at %d,%d size %dx%d", d.XOffset, d.YOffset, d.Width, d.Height)
			if d.ParentSectionID != nil {
				fmt.Fprintf(w, " in %s", *d.ParentSectionID)
			}
		}
		_, _ = dimColor.Fprintf(w, " pos %d", section.Position)
		if section.Collapsed {
			_, _ = dimColor.Fprint(w, " collapsed")
		}
		fmt.Fprintln(w)

		for _, item := range section.Items {
			fmt.Fprintf(w, "    - %s %s at %d,%d size %dx%d", item.ID, item.Kind, item.XOffset, item.YOffset, item.Width, item.Height)
			if len(item.IntegrationIDs) > 0 {
				_, _ = dimColor.Fprintf(w, " integrations: %s", strings.Join(item.IntegrationIDs, ","))
			}
			fmt.Fprintln(w)
		}
	}
}

func printPlan(w io.Writer, plan *layout.Plan) {
	summary := plan.Summary()
	if !plan.Structural() && len(plan.UpdatedSections)+len(plan.UpdatedItems) == 0 {
		_, _ = dimColor.Fprintln(w, "  no changes")
	}

	keys := make([]string, 0, len(summary))
	for key := range summary {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		clr := warningColor
		switch {
		case strings.HasSuffix(key, ".insert"):
			clr = successColor
		case strings.HasSuffix(key, ".delete"):
			clr = errorColor
		}
		_, _ = clr.Fprintf(w, "  %-16s", key)
		fmt.Fprintf(w, " %d\n", summary[key])
	}

	for _, link := range plan.DroppedLinks {
		printWarning(w, fmt.Sprintf("dropped link %s -> %s: integration not usable", link.ItemID, link.IntegrationID))
	}
}
