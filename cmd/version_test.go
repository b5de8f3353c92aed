package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	prev := rootCmd.Version
	defer func() { rootCmd.Version = prev }()
	SetVersion("1.2.3-test")

	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "skylift version 1.2.3-test") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestSetAndGetVersion(t *testing.T) {
	prev := rootCmd.Version
	defer func() { rootCmd.Version = prev }()

	SetVersion("9.9.9")
	if got := GetVersion(); got != "9.9.9" {
		t.Errorf("GetVersion() = %q, want 9.9.9", got)
	}
}
