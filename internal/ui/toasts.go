package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	infoToastSeconds  = 5
	errorToastSeconds = 10
)

// toast is a transient notification anchored to the bottom-right corner.
// Info toasts expire on their own; blocking toasts (store-write failures)
// stay until the user dismisses them with Escape.
type toast struct {
	message  string
	isError  bool
	blocking bool
	start    time.Time
}

func infoToast(message string) *toast {
	return &toast{message: message, start: time.Now()}
}

func errorToast(message string, blocking bool) *toast {
	return &toast{message: message, isError: true, blocking: blocking, start: time.Now()}
}

// expired reports whether a non-blocking toast has outlived its countdown.
func (t *toast) expired(now time.Time) bool {
	if t == nil || t.blocking {
		return false
	}
	limit := infoToastSeconds
	if t.isError {
		limit = errorToastSeconds
	}
	return now.Sub(t.start) >= time.Duration(limit)*time.Second
}

// render builds the toast box with a right-aligned countdown, or a dismiss
// hint for blocking toasts.
func (t *toast) render(now time.Time) string {
	if t == nil {
		return ""
	}
	msg := t.message
	var trailer string
	if t.blocking {
		trailer = "[Esc to dismiss]"
	} else {
		limit := infoToastSeconds
		if t.isError {
			limit = errorToastSeconds
		}
		remaining := limit - int(now.Sub(t.start).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		trailer = fmt.Sprintf("[%ds]", remaining)
	}

	width := lipgloss.Width(msg)
	if width < 30 {
		width = 30
	}
	padding := width - lipgloss.Width(trailer)
	if padding < 0 {
		padding = 0
	}
	content := msg + "\n" + strings.Repeat(" ", padding) + trailer

	style := styleInfoToast
	if t.isError {
		style = styleErrorToast
	}
	return style.Render(content)
}
