package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrorKind classifies failures surfaced by the assistant.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindInvalidInput
	KindRateLimitExceeded
	KindPriceNotFound
	KindInvalidResponse
	KindNetwork
	KindDatabase
	KindExternalAPI
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "unknown",
	KindConfiguration:     "configuration",
	KindInvalidInput:      "invalid input",
	KindRateLimitExceeded: "rate limit exceeded",
	KindPriceNotFound:     "price not found",
	KindInvalidResponse:   "invalid response",
	KindNetwork:           "network error",
	KindDatabase:          "database error",
	KindExternalAPI:       "external API error",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error carries a kind plus enough detail to render a user-facing message.
type Error struct {
	Kind    ErrorKind
	Detail  string
	Coin    string
	Status  int
	Timeout bool
	Err     error
}

// Sentinels for errors.Is comparisons; they match any *Error of the same kind.
var (
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrRateLimitExceeded = &Error{Kind: KindRateLimitExceeded}
	ErrPriceNotFound     = &Error{Kind: KindPriceNotFound}
	ErrInvalidResponse   = &Error{Kind: KindInvalidResponse}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrDatabase          = &Error{Kind: KindDatabase}
	ErrExternalAPI       = &Error{Kind: KindExternalAPI}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	switch {
	case e.Kind == KindPriceNotFound && e.Coin != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Coin)
	case e.Timeout:
		msg += ": timeout"
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether the chain contains a timed out network error.
func IsTimeout(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Timeout
	}
	return false
}

func ConfigurationError(format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Detail: fmt.Sprintf(format, args...)}
}

func InvalidInputError(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

func RateLimitError(detail string) error {
	return &Error{Kind: KindRateLimitExceeded, Detail: detail}
}

func PriceNotFoundError(coin string) error {
	return &Error{Kind: KindPriceNotFound, Coin: coin}
}

func InvalidResponseError(status int, detail string) error {
	return &Error{Kind: KindInvalidResponse, Status: status, Detail: detail}
}

// NetworkError wraps a transport failure; timeout marks deadline expiry.
func NetworkError(err error, timeout bool) error {
	return &Error{Kind: KindNetwork, Timeout: timeout, Err: err}
}

// DatabaseError wraps a persistence failure with the failed operation name.
func DatabaseError(op string, err error) error {
	return &Error{Kind: KindDatabase, Detail: op, Err: err}
}

// ExternalAPIError reports an LLM or search failure.
func ExternalAPIError(status int, detail string, err error) error {
	return &Error{Kind: KindExternalAPI, Status: status, Detail: detail, Err: err}
}

// Truncate trims s and cuts it to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
