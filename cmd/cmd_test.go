package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	if err := runVersion(versionCmd, nil); err != nil {
		t.Fatalf("runVersion() = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "knowledge-rag") {
		t.Errorf("output missing binary name:\n%s", got)
	}
	if !strings.Contains(got, "GEMINI_API_KEY: not set") {
		t.Errorf("output missing API key hint:\n%s", got)
	}
}

func TestVersionCommandRedactsKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "abcd1234efgh5678")

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	if err := runVersion(versionCmd, nil); err != nil {
		t.Fatalf("runVersion() = %v", err)
	}

	got := out.String()
	if strings.Contains(got, "abcd1234efgh5678") {
		t.Error("full API key leaked into output")
	}
	if !strings.Contains(got, "abcd...5678") {
		t.Errorf("redacted key not shown:\n%s", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{
		"ask":     false,
		"serve":   false,
		"index":   false,
		"stats":   false,
		"version": false,
	}

	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
