package errors

import (
	"strings"
	"testing"
)

func TestValidateSegmentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"wheelchair", "ext_wheelchair", false},
		{"borders", "ext_borders", false},
		{"with dash", "cells-v2", false},
		{"with inner dot", "cells.v2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"traversal", "a..b", true},
		{"leading dot", ".tmp", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegmentName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSegmentName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateSegmentName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}
