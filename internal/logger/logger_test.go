package logger

import (
	"context"
	"testing"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is longer", max: 10, want: "this is..."},
		{in: "localização do escritório", max: 12, want: "localizaç..."},
		{in: "abc", max: 2, want: "..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := WithCorrelationID(context.Background(), "abc-123")
	if got := CorrelationID(ctx); got != "abc-123" {
		t.Errorf("CorrelationID() = %q, want abc-123", got)
	}

	a := CorrelationID(context.Background())
	b := CorrelationID(context.Background())
	if a == "" || a == b {
		t.Errorf("CorrelationID without a stored id should be fresh: %q, %q", a, b)
	}
}
