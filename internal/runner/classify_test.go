package runner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClassify_NoSignature tests that clean output yields no error.
func TestClassify_NoSignature(t *testing.T) {
	require.Empty(t, Classify(""))
	require.Empty(t, Classify("Applied edit to test.py\nCommit abc123\n"))
	// The key page alone is not a signature; it only narrows the
	// troubleshooting match.
	require.Empty(t, Classify("see models-and-keys.html for details"))
}

// TestClassify_TroubleshootingLink tests the generic failure signature.
func TestClassify_TroubleshootingLink(t *testing.T) {
	stdout := "Something broke.\nFor more info see https://aider.chat/docs/troubleshooting\n"

	require.Equal(t, "something went wrong", Classify(stdout))
}

// TestClassify_MissingKeyOrModel tests the nested key/model signature.
func TestClassify_MissingKeyOrModel(t *testing.T) {
	stdout := "For more info see https://aider.chat/docs/troubleshooting/models-and-keys.html\n"

	require.Equal(t, "something went wrong, AI key or model not found", Classify(stdout))
}
