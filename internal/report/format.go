// Package report turns the update set of a run into the text that is mailed
// or printed, and carries the template context used for mail headers.
package report

import (
	"fmt"
	"strings"

	"github.com/obentoo/aptcron/internal/apt"
)

// Reminder closes every non-empty report
const Reminder = "Please update all packages at your earliest convenience."

// NothingFound is the whole report of a forced run without updates
const NothingFound = "No packages found."

// Options selects the header of a report
type Options struct {
	// OnlyNew is set when the updates were filtered against a baseline
	OnlyNew bool
	// Force produces a report even when there is nothing to list
	Force bool
	// HadBaseline is set when the filter baseline was non-empty
	HadBaseline bool
}

// Format renders updates in the given order. total is the number of
// outstanding updates before filtering and is what the header counts.
// An empty, unforced update set renders as the empty string.
func Format(updates []apt.Update, opts Options, total int) string {
	var lines []string

	switch {
	case len(updates) > 0 && opts.OnlyNew && opts.HadBaseline:
		lines = append(lines, fmt.Sprintf("%d available update(s), new since the last mail:", total))
	case len(updates) > 0:
		lines = append(lines, fmt.Sprintf("%d available update(s):", total))
	case opts.Force:
		return NothingFound
	default:
		return ""
	}

	for _, u := range updates {
		lines = append(lines, "* "+u.String())
	}

	lines = append(lines, "", Reminder)
	return strings.Join(lines, "\n")
}
