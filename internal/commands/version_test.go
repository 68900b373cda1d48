package commands

import "testing"

func TestVersionCommand_Run(t *testing.T) {
	cmd := &VersionCommand{}
	if code := cmd.Run(nil); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
}

func TestVersionCommand_HelpFlagExitsZero(t *testing.T) {
	cmd := &VersionCommand{}
	if code := cmd.Run([]string{"--help"}); code != 0 {
		t.Fatalf("expected exit 0 for --help, got %d", code)
	}
}
