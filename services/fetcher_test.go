package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Progress
		ok       bool
	}{
		{
			name:     "confirmed total",
			line:     "PROGRESS 512 2048 NA",
			expected: Progress{DownloadedBytes: 512, TotalBytes: 2048},
			ok:       true,
		},
		{
			name:     "estimated total only",
			line:     "PROGRESS 512 NA 4096",
			expected: Progress{DownloadedBytes: 512, TotalBytesEstimate: 4096},
			ok:       true,
		},
		{
			name:     "no totals at all",
			line:     "PROGRESS 512 NA NA",
			expected: Progress{DownloadedBytes: 512},
			ok:       true,
		},
		{
			name:     "float byte counts",
			line:     "PROGRESS 512.0 2048.5 NA",
			expected: Progress{DownloadedBytes: 512, TotalBytes: 2048},
			ok:       true,
		},
		{
			name: "not a progress line",
			line: "/downloads/My Video.mp4",
			ok:   false,
		},
		{
			name: "truncated progress line",
			line: "PROGRESS 512",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, ok := parseProgressLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, update)
			}
		})
	}
}

func TestParseByteCount(t *testing.T) {
	assert.Equal(t, int64(1024), parseByteCount("1024"))
	assert.Equal(t, int64(1024), parseByteCount("1024.7"))
	assert.Equal(t, int64(0), parseByteCount("NA"))
	assert.Equal(t, int64(0), parseByteCount("None"))
	assert.Equal(t, int64(0), parseByteCount(""))
	assert.Equal(t, int64(0), parseByteCount("garbage"))
	assert.Equal(t, int64(0), parseByteCount("-5"))
}

func TestStderrTail(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("WARNING: something minor\nERROR: Unsupported URL: https://example.com\n")
	assert.Equal(t, "ERROR: Unsupported URL: https://example.com", stderrTail(&buf))

	var empty bytes.Buffer
	assert.Equal(t, "", stderrTail(&empty))
}
