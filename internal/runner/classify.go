package runner

import "strings"

// Known failure signatures aider prints to stdout.
const (
	troubleshootingURL = "https://aider.chat/docs/troubleshooting"
	modelKeysPage      = "models-and-keys.html"
)

// Classify derives an error annotation from the complete captured stdout.
//
// The rules are ordered and literal: the troubleshooting link alone means
// something went wrong; the models-and-keys page narrows it to a missing key
// or model. New rules must be appended after these, never replace them — the
// key check is only meaningful nested inside the troubleshooting check.
// Returns the empty string when no signature matches.
func Classify(stdout string) string {
	if !strings.Contains(stdout, troubleshootingURL) {
		return ""
	}

	msg := "something went wrong"

	if strings.Contains(stdout, modelKeysPage) {
		msg += ", AI key or model not found"
	}

	return msg
}
