package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestVersionCommand(t *testing.T) {
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate
	defer func() {
		Version = origVersion
		GitCommit = origGitCommit
		BuildDate = origBuildDate
	}()

	Version = "1.0.0"
	GitCommit = "abc123"
	BuildDate = "2026-08-30T12:00:00Z"

	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	versionCmd.Run(cmd, nil)

	output := buf.String()
	for _, expected := range []string{
		"Plataforma de Eventos Server",
		"Version:    1.0.0",
		"Git commit: abc123",
		"Build date: 2026-08-30T12:00:00Z",
		"Go version:",
		"Platform:",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "seed": false, "version": false, "healthcheck": false}
	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
