package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verba/internal/i18n"
)

type sent struct{ title, body string }

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	prev := notifyFn
	notifyFn = func(title, message, _ string) error {
		got = append(got, sent{title, message})
		return nil
	}
	t.Cleanup(func() { notifyFn = prev })
	return &got
}

func TestFailureMessages(t *testing.T) {
	i18n.SetLanguage(i18n.EN)
	t.Cleanup(func() { i18n.SetLanguage(i18n.RU) })

	tests := []struct {
		reason string
		want   string
	}{
		{"permission", "Microphone access is blocked. Allow recording in system settings."},
		{"unknown", "Could not start recording"},
		{"too_short", "Recording too short"},
		{"too_quiet", "Recording too quiet"},
		{"transcription", "Could not transcribe speech"},
		{"something_else", "Could not start recording"},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, FailureMessage(tt.reason))
		})
	}
}

func TestNotifierDisabled(t *testing.T) {
	got := capture(t)

	n := New(false)
	n.Failure("too_short")
	assert.Empty(t, *got)

	n.SetEnabled(true)
	n.Failure("too_short")
	require.Len(t, *got, 1)
	assert.True(t, strings.HasPrefix((*got)[0].title, "Verba: "))
}

func TestSuccessTruncates(t *testing.T) {
	got := capture(t)

	New(true).Success(strings.Repeat("ж", 150))
	require.Len(t, *got, 1)
	assert.Equal(t, strings.Repeat("ж", maxBody)+"...", (*got)[0].body)
}
