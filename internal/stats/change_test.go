package stats

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestChangePercent(t *testing.T) {
	tests := []struct {
		current, previous string
		want              string // empty means nil
	}{
		{"110", "100", "10"},
		{"90", "100", "-10"},
		{"100", "100", "0"},
		{"0", "50", "-100"},
		{"150.50", "100", "50.5"},
		{"123", "0", ""},
		{"0", "0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.current+"_vs_"+tt.previous, func(t *testing.T) {
			got := ChangePercent(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ChangePercent() = %s, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ChangePercent() = nil, want %s", tt.want)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ChangePercent() = %s, want %s", got, tt.want)
			}
		})
	}
}
