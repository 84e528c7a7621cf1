package chat

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/internal/domain"
)

// UserMessage renders an error returned by ProcessMessage for the user.
// The detail of external failures is kept short.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	detail := ""
	var e *domain.Error
	if errors.As(err, &e) {
		detail = e.Detail
	}

	switch domain.KindOf(err) {
	case domain.KindConfiguration:
		return fmt.Sprintf("Sorry, I'm not configured correctly: %s.", detail)
	case domain.KindInvalidInput:
		return fmt.Sprintf("Sorry, I couldn't process that: %s.", detail)
	case domain.KindRateLimitExceeded:
		return "Sorry, I'm being rate limited right now. Please try again in a minute."
	case domain.KindDatabase:
		return "Sorry, I couldn't access my conversation storage. Please try again."
	case domain.KindNetwork:
		if domain.IsTimeout(err) {
			return "Sorry, the AI service took too long to respond. Please try again."
		}
		return "Sorry, I couldn't reach the AI service. Please check your connection and try again."
	case domain.KindExternalAPI:
		return fmt.Sprintf("Sorry, the AI service returned an error: %s", domain.Truncate(detail, 200))
	}
	return "Sorry, something went wrong while processing your message. Please try again."
}
