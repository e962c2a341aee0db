package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "deduplicates and trims punctuation",
			text: "hello @alice and @alice again, @bob!",
			want: []string{"alice", "bob"},
		},
		{
			name: "no mentions",
			text: "nothing to see here",
			want: nil,
		},
		{
			name: "underscores and digits are part of the name",
			text: "ping @dev_ops2 please",
			want: []string{"dev_ops2"},
		},
		{
			name: "bare at sign is not a mention",
			text: "meet @ noon",
			want: nil,
		},
		{
			name: "adjacent punctuation ends the token",
			text: "(@carol) @dave, @erin.",
			want: []string{"carol", "dave", "erin"},
		},
		{
			name: "mention at start and end",
			text: "@first middle @last",
			want: []string{"first", "last"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}
