package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{"0", 0, nil},
		{"12.34", 1234, nil},
		{"12.3", 1230, nil},
		{"1000", 100000, nil},
		{"0.01", 1, nil},
		{"12.345", 0, ErrAmountPrecision},
		{"100000000000000000000", 0, ErrAmountOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ToMinorUnits(%s) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ToMinorUnits(%s) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	cases := map[int64]string{
		0:      "0",
		1:      "0.01",
		1234:   "12.34",
		100000: "1000",
	}
	for cents, want := range cases {
		if got := FromMinorUnits(cents); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("FromMinorUnits(%d) = %s, want %s", cents, got, want)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.RequireFromString("99.99")); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateAmount(decimal.RequireFromString("-0.01")); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if err := ValidateAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("expected ErrAmountPrecision, got %v", err)
	}
}
