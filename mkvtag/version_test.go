package mkvtag

import "testing"

func TestVersionString(t *testing.T) {
	if got := Version(); got != "1.0.0" {
		t.Errorf("expected 1.0.0, got %q", got)
	}
}
