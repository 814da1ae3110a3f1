package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    string
	}{
		{"/inbox", "/inbox", ""},
		{"/inbox email", "/inbox", "email"},
		{"/INBOX Email", "/inbox", "Email"},
		{"/inbox@secretarybot email", "/inbox", "email"},
		{"/search dentist appointment", "/search", "dentist appointment"},
		{"/do toot hello world", "/do", "toot hello world"},
		{"hello there", "", "hello there"},
		{"/ask   ", "/ask", ""},
	}

	for _, tt := range tests {
		command, args := splitCommand(tt.text)
		require.Equal(t, tt.command, command, "text %q", tt.text)
		require.Equal(t, tt.args, args, "text %q", tt.text)
	}
}
