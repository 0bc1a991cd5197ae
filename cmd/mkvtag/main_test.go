package main

import "testing"

func TestTargetTypeForPrefersFlagOverConfig(t *testing.T) {
	orig := *target
	defer func() { *target = orig }()

	*target = 0
	if got := targetTypeFor(config{DefaultTargetType: 30}); got != 30 {
		t.Errorf("expected config default 30, got %d", got)
	}

	*target = 60
	if got := targetTypeFor(config{DefaultTargetType: 30}); got != 60 {
		t.Errorf("expected flag override 60, got %d", got)
	}
}
