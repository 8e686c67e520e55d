package compact

import (
	"strings"

	"deadline-notify/internal/utils/text"
)

const dateLayout = "2006-01-02"

// render builds the message for a candidate row list.
//
//	**{section}**
//	{DateLabel}{YYYY-MM-DD}      (only when rows is non-empty)
//	- [title](url)               (one per row)
//	{OmittedSuffix}              (only when omitted)
func render(section string, rows []row, omitted bool, opts Options) string {
	var b strings.Builder
	b.WriteString(header(section))
	if len(rows) > 0 {
		b.WriteString("\n")
		b.WriteString(opts.DateLabel)
		b.WriteString(rows[0].Deadline.Format(dateLayout))
		for _, r := range rows {
			b.WriteString("\n- [")
			b.WriteString(r.Title)
			b.WriteString("](")
			b.WriteString(r.URL)
			b.WriteString(")")
		}
	}
	if omitted {
		b.WriteString("\n")
		b.WriteString(opts.OmittedSuffix)
	}
	return b.String()
}

// fallback is the last-resort message carrying no rows at all.
func fallback(section string, opts Options) string {
	return header(section) + "\n" + opts.FallbackNotice + "\n" + opts.OmittedSuffix
}

func header(section string) string {
	return "**" + section + "**"
}

// Fits reports whether msg is at most budget characters long.
func Fits(msg string, budget int) bool {
	return text.CountRunes(msg) <= budget
}
