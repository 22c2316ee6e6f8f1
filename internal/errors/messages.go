// internal/errors/messages.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// LoginFailedMessage is the uniform detail for every per-request failure.
const LoginFailedMessage = "Login failed or could not fetch data"

// MessageHandler converts technical errors to user-friendly messages
type MessageHandler struct {
	showTechnical bool
}

// NewMessageHandler creates a handler. With showTechnical the wrapped cause is appended.
func NewMessageHandler(showTechnical bool) *MessageHandler {
	return &MessageHandler{showTechnical: showTechnical}
}

// UserMessage returns the text shown to API clients and CLI users.
func (h *MessageHandler) UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var msg string
	switch KindOf(err) {
	case KindUnavailable:
		msg = "Scraping service is not ready, try again shortly"
	case KindLaunch:
		msg = "Browser could not be started"
	default:
		msg = LoginFailedMessage
	}

	if h.showTechnical {
		return fmt.Sprintf("%s (%v)", msg, err)
	}
	return msg
}

// HTTPStatus maps an error to the status code returned by the HTTP layer.
func (h *MessageHandler) HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case KindOf(err) == KindUnavailable, KindOf(err) == KindLaunch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// ExitCode maps an error to a CLI exit status.
func (h *MessageHandler) ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	switch KindOf(err) {
	case KindAuthentication:
		return 2
	case KindStructural:
		return 3
	case KindLaunch, KindUnavailable:
		return 4
	default:
		return 1
	}
}

// FormatErrorForCLI renders err for stderr.
func (h *MessageHandler) FormatErrorForCLI(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("✗ ")
	b.WriteString(h.UserMessage(err))
	b.WriteString("\n")
	if !h.showTechnical {
		b.WriteString("  run with --verbose for details\n")
	}
	return b.String()
}
