package main

import (
	"strings"
	"testing"
)

func TestNewlineDeserializer(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single no trailing newline", "P0", []string{"P0"}},
		{"two records trailing newline", "P0\nP1\n", []string{"P0", "P1"}},
		{"blank lines skipped", "P0\n\nP1", []string{"P0", "P1"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pages, err := newlineDeserializer(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("newlineDeserializer: %v", err)
			}
			if len(pages) != len(tc.want) {
				t.Fatalf("expected %d pages, got %d", len(tc.want), len(pages))
			}
			for i, want := range tc.want {
				if string(pages[i]) != want {
					t.Fatalf("page %d: expected %q, got %q", i, want, pages[i])
				}
			}
		})
	}
}
