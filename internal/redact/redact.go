// Package redact strips stack traces, file paths and credentials from
// error text before it is logged or echoed back as error details.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	PathPlaceholder       = "[REDACTED_PATH]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order. A stack dump swallows everything after its header.
var rules = []rule{
	{regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`), StackPlaceholder},
	{regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^/\s:@]+:[^/\s@]+@`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key)(\s*[=:]\s*)\S+`), "${1}${2}" + CredentialPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}\.go(?::\d+)?`), PathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(?:\\[^\\\s]+)+`), PathPlaceholder},
}

// String returns input with sensitive fragments replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error is String applied to err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
