// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [HistoryView] : Browse the live history page with status filtering and pagination
//  2. [ConfirmClearView] : Confirm clearing all history
//  3. [WizardView] : Walk the conflict resolution dialog for one record
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Page state is owned by the tasks.Synchronizer and resolution state by the
// tasks.Wizard; the model only routes key events to them and runs their fetch
// intents as tea.Cmds, reporting completions back with the tokens they carry.
// Push events flow through a channel from the services.PushClient subscriber,
// re-armed with a wait command after every delivery.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
