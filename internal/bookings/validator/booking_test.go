package validator

import (
	"io"
	"testing"
	"time"

	"skillex/pkg/logger"
)

func newValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Output: io.Discard}))
}

func TestParseRequestedDate(t *testing.T) {
	v := newValidator()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"today", today.Format(DateLayout), false},
		{"tomorrow", today.Add(24 * time.Hour).Format(DateLayout), false},
		{"far future", today.AddDate(1, 0, 0).Format(DateLayout), false},
		{"yesterday", today.Add(-24 * time.Hour).Format(DateLayout), true},
		{"wrong layout", today.Format("02/01/2006"), true},
		{"garbage", "next tuesday", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := v.ParseRequestedDate(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRequestedDate(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil {
				if h, m, s := parsed.Clock(); h != 0 || m != 0 || s != 0 {
					t.Errorf("parsed date should be midnight UTC, got %v", parsed)
				}
			}
		})
	}
}
