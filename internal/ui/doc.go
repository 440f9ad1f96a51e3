// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist building:
//  1. [PreviewView] : Browse the dry-run track list before anything is created
//  2. [ConfirmView] : Confirm playlist creation
//  3. [BuildView] : Monitor real-time progress updates
//  4. [ResultView] : Display the created playlist or the failure
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the pipeline Engine, providing non-blocking status reporting during builds.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
