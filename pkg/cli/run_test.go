package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/smlc/internal/config"
)

func TestMain(m *testing.M) {
	config.IsTestMode = true
	os.Exit(m.Run())
}

func writeSource(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSuccess(t *testing.T) {
	path := writeSource(t, "ok.sml", "val x = 1\nfun id y = y\n")
	code, stdout, stderr := runCLI(path)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	if stdout != "" || stderr != "" {
		t.Errorf("silent run printed output:\nstdout: %q\nstderr: %q", stdout, stderr)
	}
}

func TestRunTypeError(t *testing.T) {
	path := writeSource(t, "bad.sml", "val a = 1\nval x = 1 + true\n")
	code, _, stderr := runCLI(path)
	if code != ExitDiagnostics {
		t.Fatalf("exit %d, want %d", code, ExitDiagnostics)
	}
	for _, want := range []string{path + ":2:", "error[Mismatch]", "1 error, 0 warnings"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestRunWarningsDoNotFail(t *testing.T) {
	path := writeSource(t, "warn.sml", "fun f 0 = 1\n")
	code, _, stderr := runCLI(path)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "warning[InexhaustiveMatch]") {
		t.Errorf("expected an inexhaustive match warning:\n%s", stderr)
	}
}

func TestRunStopsAfterParse(t *testing.T) {
	path := writeSource(t, "bad.sml", "val x = 1 + true\n")
	code, _, stderr := runCLI("--phase", "parse", path)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
}

func TestRunParseError(t *testing.T) {
	path := writeSource(t, "syntax.sml", "val = \n")
	code, _, stderr := runCLI(path)
	if code != ExitDiagnostics {
		t.Fatalf("exit %d, want %d", code, ExitDiagnostics)
	}
	if !strings.Contains(stderr, "error[") {
		t.Errorf("expected a syntax error:\n%s", stderr)
	}
}

func TestRunVeryVerbose(t *testing.T) {
	path := writeSource(t, "dump.sml", "datatype color = Red | Green\nval c = Red\n")
	code, stdout, stderr := runCLI("--vv", path)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{
		"smlc: session ",
		"smlc: running parse",
		"smlc: running elaborate",
		"(* core *)",
		"datatype color = Red | Green",
		"val c : color = Red",
		"(* environment *)",
		"con Red : color",
		"val c : color",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunMeasure(t *testing.T) {
	path := writeSource(t, "m.sml", "val x = [1, 2, 3]\n")
	code, stdout, stderr := runCLI("--measure", path)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"session ", "phase", "parse", "elaborate", "total"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunLaterPhaseNote(t *testing.T) {
	path := writeSource(t, "n.sml", "val x = 1\n")
	code, stdout, _ := runCLI("--v", "--phase", "mono", path)
	if code != ExitOK {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "monomorphize is not part of this build") {
		t.Errorf("expected a note about later phases:\n%s", stdout)
	}
}

func TestRunMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.sml")
	b := filepath.Join(dir, "b.sml")
	if err := os.WriteFile(a, []byte("fun double n = n * 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("val z = double 21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := runCLI(a, b)
	if code != ExitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr)
	}
}

func TestRunDriverErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"unknown flag", []string{"--fast", "a.sml"}, ExitUsage, "error[UnknownFlag]"},
		{"missing phase", []string{"a.sml", "--phase"}, ExitUsage, "error[MissingPhaseArgument]"},
		{"bad phase", []string{"--phase", "link", "a.sml"}, ExitUsage, "error[UnrecognizedPhase]"},
		{"no files", nil, ExitUsage, "no input files"},
		{"missing file", []string{filepath.Join(t.TempDir(), "absent.sml")}, ExitDiagnostics, "error[ReadFile]"},
		{"wrong extension", []string{"notes.txt"}, ExitDiagnostics, "error[UnsupportedExtension]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(tt.args...)
			if code != tt.code {
				t.Errorf("exit %d, want %d", code, tt.code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, stderr)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, stdout, _ := runCLI("--help")
	if code != ExitOK {
		t.Fatalf("exit %d", code)
	}
	if !strings.HasPrefix(stdout, "Usage: smlc") {
		t.Errorf("unexpected help output:\n%s", stdout)
	}
}
