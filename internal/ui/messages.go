package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/mediscan/internal/session"
)

// Message types for the scan model
type tickMsg time.Time

// completionMsg carries an executor outcome back onto the update loop
type completionMsg struct {
	completion session.Completion
}

// selectPathMsg asks the model to select a file by path
type selectPathMsg struct {
	path string
}

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runPending runs an invocation off the update loop. Its completion is
// delivered as a message so the session is only touched from Update.
func runPending(p *session.Pending) tea.Cmd {
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return completionMsg{completion: p.Run()}
	}
}

func selectPath(path string) tea.Cmd {
	return func() tea.Msg {
		return selectPathMsg{path: path}
	}
}
