package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/roster/internal/models"
	"github.com/desertthunder/roster/internal/reconcile"
)

var (
	_ list.Item = passItem{}
	_ list.Item = writeItem{}
)

// passItem wraps [reconcile.PassReport] to implement [list.Item].
type passItem struct {
	report reconcile.PassReport
}

func (i passItem) FilterValue() string { return i.report.Summary() }
func (i passItem) Title() string       { return i.report.Summary() }
func (i passItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.report.Finished.Format("15:04:05"), i.report.Duration().Round(1e6))
	if i.report.Skipped {
		return desc
	}
	var phases []string
	for _, p := range i.report.Phases {
		switch {
		case p.Skipped:
			phases = append(phases, fmt.Sprintf("%s skipped", p.Phase))
		case len(p.Results) > 0:
			phases = append(phases, fmt.Sprintf("%s %d", p.Phase, len(p.Results)))
		}
	}
	if len(phases) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(phases, ", "))
	}
	return desc
}

// writeItem wraps [reconcile.WriteResult] to implement [list.Item].
type writeItem struct {
	result reconcile.WriteResult
}

func (i writeItem) FilterValue() string { return i.result.ID }
func (i writeItem) Title() string {
	mark := "✓"
	if !i.result.OK() {
		mark = "✗"
	}
	return fmt.Sprintf("%s %s %s %s", mark, i.result.Op, i.result.Collection, i.result.ID)
}
func (i writeItem) Description() string {
	if !i.result.OK() {
		return i.result.Err.Error()
	}
	return formatFields(i.result.Fields)
}

func formatFields(fields models.Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}
