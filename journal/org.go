package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FormatEventOrg renders an event as an Org-mode heading with its facts in
// a PROPERTIES drawer, so a journal file stays greppable.
func FormatEventOrg(e Event) string {
	heading := fmt.Sprintf("** %s: %s (%s)", e.Kind, e.Entity, shortID(e.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", e.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":KIND: %s\n", e.Kind))
	b.WriteString(fmt.Sprintf(":ENTITY: %s\n", e.Entity))
	if e.Actor != "" {
		b.WriteString(fmt.Sprintf(":ACTOR: %s\n", e.Actor))
	}
	if e.Asset != "" {
		b.WriteString(fmt.Sprintf(":ASSET: %s\n", e.Asset))
	}
	b.WriteString(fmt.Sprintf(":AMOUNT: %s\n", amountString(e.Amount)))

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s: %s\n", strings.ToUpper(k), e.Attrs[k]))
	}
	b.WriteString(":END:\n")

	return b.String()
}

// FormatEventsOrg renders multiple events separated by blank lines.
func FormatEventsOrg(events []Event) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEventOrg(e))
	}
	return b.String()
}

func shortID(full string) string {
	full = full[strings.IndexByte(full, '_')+1:]
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
