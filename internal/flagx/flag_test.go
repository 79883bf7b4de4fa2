package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-a", ":8080", "-x", "junk"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":8080"},
		},
		{
			name:         "long flag with equals",
			args:         []string{"-d=dsn", "--config=x.json"},
			allowedFlags: []string{"-d"},
			want:         []string{"-d=dsn"},
		},
		{
			name:         "flag followed by another flag takes no value",
			args:         []string{"-a", "-d", "dsn"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", "-d", "dsn"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			assert.Equal(t, tt.want, got)
		})
	}
}
