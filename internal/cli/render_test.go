package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderFlagsZeroUsesDefault(t *testing.T) {
	cmd := New(io.Discard, LogInfo).renderCommand()
	for _, name := range []string{"max-iterations", "tolerance", "seed", "width", "height", "margin", "scale"} {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			t.Fatalf("flag --%s not registered", name)
		}
		if !strings.Contains(fl.Usage, "0 uses the default") {
			t.Errorf("--%s usage %q does not mention the zero default", name, fl.Usage)
		}
	}
	if usage := cmd.Flags().Lookup("seed").Usage; !strings.Contains(usage, "coincident-node") {
		t.Errorf("--seed usage = %q", usage)
	}

	isolate(t)
	captureStatus(t)
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.json")
	zeroed := filepath.Join(dir, "zeroed.json")
	if _, err := execute(t, "render", "GGGAAAUCC", "0,8,1,7,2,6", "--no-cache", "-f", "json", "-o", plain); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := execute(t, "render", "GGGAAAUCC", "0,8,1,7,2,6", "--no-cache", "-f", "json", "-o", zeroed,
		"--margin", "0", "--seed", "0", "--tolerance", "0", "--width", "0", "--height", "0"); err != nil {
		t.Fatalf("render with zero flags: %v", err)
	}

	want, err := os.ReadFile(plain)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(zeroed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("zero flags changed the output:\n%s\nwant:\n%s", got, want)
	}
}
