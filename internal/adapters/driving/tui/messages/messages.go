// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewComplaints is the filtered complaint list.
	ViewComplaints ViewType = iota
	// ViewDetail shows one complaint and its history.
	ViewDetail
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewComplaints:
		return "complaints"
	case ViewDetail:
		return "detail"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ComplaintsLoaded carries the result of a filtered query.
type ComplaintsLoaded struct {
	Complaints []domain.Complaint
	Filter     domain.FilterSpec
	Err        error
}

// ComplaintSelected opens the detail view for a complaint.
type ComplaintSelected struct {
	Complaint domain.Complaint
}

// DetailLoaded carries a refreshed complaint and its status history.
type DetailLoaded struct {
	Complaint *domain.Complaint
	History   []domain.StatusChange
	Err       error
}

// StatusUpdated signals a review status change finished.
type StatusUpdated struct {
	Complaint *domain.Complaint
	Err       error
}
