package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"crashes.csv", "crashes.csv"},
		{"../../etc/passwd.csv", "passwd.csv"},
		{`C:\Users\me\Desktop\data.csv`, "data.csv"},
		{"weekly report (1).csv", "weekly_report_1_.csv"},
		{".hidden.csv", "hidden.csv"},
		{"__init.csv", "init.csv"},
		{"ünïcode.csv", "n_code.csv"},
		{"", ""},
		{"/", ""},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestHasCSVExtension(t *testing.T) {
	assert.True(t, hasCSVExtension("a.csv"))
	assert.True(t, hasCSVExtension("a.CSV"))
	assert.False(t, hasCSVExtension("a.csv.txt"))
	assert.False(t, hasCSVExtension("csv"))
}
