package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "watch url with list parameter",
			url:      "https://example.com/watch?v=xxx&list=PLxxx",
			expected: true,
		},
		{
			name:     "plain watch url",
			url:      "https://example.com/watch?v=xxx",
			expected: false,
		},
		{
			name:     "playlist page",
			url:      "https://www.youtube.com/playlist?list=PLabc123",
			expected: true,
		},
		{
			name:     "list parameter first",
			url:      "https://www.youtube.com/watch?list=PLabc&v=xyz",
			expected: true,
		},
		{
			name:     "list in fragment only",
			url:      "https://example.com/watch?v=xxx#list=PLxxx",
			expected: false,
		},
		{
			name:     "empty url",
			url:      "",
			expected: false,
		},
		{
			name:     "unparseable url",
			url:      "://not-a-url",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPlaylistURL(tt.url))
		})
	}
}
