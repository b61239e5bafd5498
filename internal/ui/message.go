package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/roster/internal/reconcile"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPassReport MsgKind = iota
	MsgReportsClosed
)

// passReportMsg is the constructor for [MsgPassReport]
func passReportMsg(report reconcile.PassReport) Msg {
	return Msg{kind: MsgPassReport, data: report}
}

// reportsClosedMsg is the constructor for [MsgReportsClosed]
func reportsClosedMsg() Msg {
	return Msg{kind: MsgReportsClosed}
}
