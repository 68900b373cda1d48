package commands

import "testing"

func TestCompletionsCommand_KnownShells(t *testing.T) {
	cmd := &CompletionsCommand{}
	for _, shell := range []string{"bash", "zsh", "fish"} {
		if code := cmd.Run([]string{shell}); code != 0 {
			t.Errorf("completions %s: expected exit 0, got %d", shell, code)
		}
	}
}

func TestCompletionsCommand_UnknownShellFails(t *testing.T) {
	cmd := &CompletionsCommand{}
	if code := cmd.Run([]string{"powershell"}); code != 1 {
		t.Fatalf("expected exit 1 for an unsupported shell, got %d", code)
	}
}

func TestCompletionsCommand_MissingShellFails(t *testing.T) {
	cmd := &CompletionsCommand{}
	if code := cmd.Run(nil); code != 1 {
		t.Fatalf("expected exit 1 without a shell argument, got %d", code)
	}
}
