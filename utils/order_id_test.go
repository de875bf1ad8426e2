package utils

import (
	"regexp"
	"testing"
)

func TestGenerateOrderIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD_\d{13}_[a-z0-9]{9}$`)
	id := GenerateOrderID()
	if !pattern.MatchString(id) {
		t.Fatalf("unexpected order id format: %q", id)
	}
}

func TestGenerateOrderIDDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateOrderID()
		if seen[id] {
			t.Fatalf("duplicate order id after %d iterations: %q", i, id)
		}
		seen[id] = true
	}
}
