package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command wiring.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "webcrawler" {
		t.Errorf("Use = %q, want %q", cmd.Use, "webcrawler")
	}

	want := map[string]bool{
		"crawl":   false,
		"runs":    false,
		"show":    false,
		"version": false,
	}
	for _, sub := range cmd.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}

	if cmd.PersistentFlags().Lookup("verbose") == nil {
		t.Error("missing persistent --verbose flag")
	}
}

// TestRootCmdHelp tests that help executes without error.
func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "crawl") {
		t.Errorf("help output missing crawl subcommand:\n%s", buf.String())
	}
}
