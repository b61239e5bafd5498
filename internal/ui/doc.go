// Package ui implements the reconciliation watch view using bubbletea's Elm architecture.
//
// The TUI follows a running reconciliation driver:
//  1. [PassListView] : Live list of pass reports under a header with the gate and collection counts
//  2. [DetailView] : Every write the selected pass attempted, failures highlighted
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Pass reports flow through a channel from the driver; the model waits on it with a command and never blocks the driver.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
