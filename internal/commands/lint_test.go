package commands

import "testing"

func TestLintCommand_MissingHookNameFails(t *testing.T) {
	cmd := &LintCommand{}
	if code := cmd.Run(nil); code != 1 {
		t.Fatalf("expected exit 1 without a HOOK_NAME argument, got %d", code)
	}
}

func TestLintCommand_HelpFlagExitsZero(t *testing.T) {
	cmd := &LintCommand{}
	if code := cmd.Run([]string{"--help"}); code != 0 {
		t.Fatalf("expected exit 0 for --help, got %d", code)
	}
}
