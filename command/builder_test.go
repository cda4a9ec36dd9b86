package command

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

func TestValidateAppID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid id", "570", false},
		{"long valid id", "1245620", false},
		{"empty id", "", true},
		{"letters", "57a", true},
		{"negative", "-570", true},
		{"injection", "570;rm -rf /", true},
		{"too long", "12345678901", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAppID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAppID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAchievementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"upper snake", "ACH_WIN_ONE_GAME", false},
		{"dotted", "stat.kills-100", false},
		{"empty", "", true},
		{"space", "ACH WIN", true},
		{"shell", "ACH$(id)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAchievementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAchievementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute", "/opt/idler/libs/SteamUtility", false},
		{"empty", "", true},
		{"relative", "libs/SteamUtility", true},
		{"traversal", "/opt/../etc/passwd", true},
		{"semicolon", "/opt/idler;ls", true},
		{"pipe", "/opt/idler|cat", true},
		{"backtick", "/opt/`whoami`", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFilePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFlag(t *testing.T) {
	for _, ok := range []string{"true", "false"} {
		if err := validateFlag(ok); err != nil {
			t.Errorf("validateFlag(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1", "TRUE", "yes"} {
		if err := validateFlag(bad); err == nil {
			t.Errorf("validateFlag(%q) expected error", bad)
		}
	}
}

func TestSafeBuilder(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("validate known type", func(t *testing.T) {
		if err := sb.Validate(ArgAppID, "730"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("validate unknown type", func(t *testing.T) {
		if err := sb.Validate("unknown", "value"); err == nil {
			t.Error("expected error for unknown validator type")
		}
	})

	t.Run("build empty command", func(t *testing.T) {
		if _, err := sb.Build(context.Background(), ""); err == nil {
			t.Error("expected error for empty command")
		}
	})

	t.Run("build and render", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "/opt/SteamUtility", "idle", "570", "false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := cmd.String(); got != "/opt/SteamUtility idle 570 false" {
			t.Errorf("String() = %q", got)
		}
		if len(cmd.Args()) != 3 {
			t.Errorf("Args() = %v", cmd.Args())
		}
	})

	t.Run("timeout capped", func(t *testing.T) {
		cmd, _ := sb.Build(context.Background(), "true")
		cmd.WithTimeout(time.Hour)
		if cmd.timeout != MaxTimeout {
			t.Errorf("timeout = %v, want %v", cmd.timeout, MaxTimeout)
		}
	})
}

func TestCommandRun(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}

	cmd, err := NewSafeBuilder().Build(context.Background(), "echo", "unlock", "570")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out, err := cmd.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(out) != "unlock 570\n" {
		t.Errorf("output = %q", out)
	}
}
