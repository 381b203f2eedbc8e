package driver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lattyware/montyweightjava/pkg/ast"
	"github.com/Lattyware/montyweightjava/pkg/interpreter"
)

func runSource(t *testing.T, src string) error {
	t.Helper()
	prog, err := Compile(src, nil)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	return interpreter.New(prog, interpreter.WithStdout(&out)).Run()
}

func TestPhasesAndExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		phase Phase
		code  int
	}{
		{"ok", "class A { static void main() { } }", PhaseHost, 0},
		{"lexical", "class A { /* never closed", PhaseLexical, 2},
		{"syntax", "class A {", PhaseSyntax, 3},
		{"semantic", "class A extends B { }", PhaseSemantic, 4},
		{"runtime", "class A { static void main() { int z = 0; int x = 1 / z; } }", PhaseRuntime, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runSource(t, tt.src)
			assert.Equal(t, tt.code, ExitCode(err))
			if err != nil {
				assert.Equal(t, tt.phase, PhaseOf(err))
			}
		})
	}
}

func TestHostErrors(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "missing.mj"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, PhaseHost, PhaseOf(err))
	assert.Equal(t, 1, ExitCode(err))
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Main.mj")
	require.NoError(t, os.WriteFile(path, []byte("class Main { static void main() { } }\n"), 0o644))
	prog, err := CompileFile(path)
	require.NoError(t, err)
	require.NotNil(t, prog.Entry)
	assert.Equal(t, "Main", prog.Entry.Owner.Name)
}

func TestDiagnosticFormat(t *testing.T) {
	diag := Diagnostic{
		Path:    "prog.mj",
		Pos:     ast.Position{Line: 3, Column: 7},
		Phase:   PhaseRuntime,
		Kind:    "DivisionByZero",
		Message: "/ by zero",
		Stack:   []string{"A.f()", "A.main()"},
	}
	assert.Equal(t, "prog.mj:3:7: runtime error: DivisionByZero: / by zero\n\tat A.f()\n\tat A.main()", diag.String())

	diag = Diagnostic{Path: "prog.mj", Phase: PhaseHost, Message: "boom"}
	assert.Equal(t, "prog.mj: error: boom", diag.String())

	diag = Diagnostic{Phase: PhaseSyntax, Message: "expected ;, found }"}
	assert.Equal(t, "syntax error: expected ;, found }", diag.String())
}

func TestFormatError(t *testing.T) {
	_, err := Compile("class A {\n  /* open", nil)
	assert.Equal(t, "a.mj:2:3: lexical error: unterminated block comment", FormatError("a.mj", err))

	_, err = Compile("class A extends B { }", nil)
	text := FormatError("a.mj", err)
	assert.True(t, strings.HasPrefix(text, "a.mj:1:"), text)
	assert.Contains(t, text, "semantic error: UnknownClass: cannot find superclass B of A")

	err = runSource(t, "class A {\n    static void main() {\n        int z = 0;\n        int x = 1 / z;\n    }\n}\n")
	assert.Equal(t, "a.mj:4:17: runtime error: DivisionByZero: / by zero\n\tat A.main()", FormatError("a.mj", err))

	_, err = Compile("class A {", nil)
	assert.True(t, strings.HasPrefix(FormatError("a.mj", err), "a.mj:1:10: syntax error: expected "), FormatError("a.mj", err))
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
main: Program
trace: Info
limits:
  max_call_depth: 64
  max_steps: 1000
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Program", cfg.Main)
	assert.Equal(t, "Info", cfg.Trace)
	assert.Equal(t, Limits{MaxCallDepth: 64, MaxSteps: 1000}, cfg.Limits)
	assert.Len(t, cfg.Options(), 3)
	assert.True(t, filepath.IsAbs(cfg.Path))

	empty, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Empty(t, empty.Options())
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	for name, contents := range map[string]string{
		"unknown key":    "mian: Program\n",
		"bad trace":      "trace: verbose\n",
		"negative depth": "limits:\n  max_call_depth: -1\n",
		"depth too big":  "limits:\n  max_call_depth: 10001\n",
		"negative steps": "limits:\n  max_steps: -5\n",
		"not yaml":       "main: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, contents))
			require.Error(t, err)
			assert.Equal(t, 1, ExitCode(err))
		})
	}
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := FindConfig(filepath.Join(dir, "Main.mj"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("main: Main\n"), 0o644))
	cfg, err = FindConfig(filepath.Join(dir, "Main.mj"))
	require.NoError(t, err)
	assert.Equal(t, "Main", cfg.Main)
}

func TestConfigureTracing(t *testing.T) {
	defer tracing.SetTraceSelector(tracing.SelectorForAdapter(tracing.NoOpTrace))

	var buf bytes.Buffer
	require.NoError(t, ConfigureTracing("debug", &buf))
	tracing.Select("mj.driver").Debugf("compiled %d classes", 2)
	assert.Contains(t, buf.String(), "compiled 2 classes")

	buf.Reset()
	require.NoError(t, ConfigureTracing("error", &buf))
	tracing.Select("mj.driver").Infof("hidden")
	assert.Empty(t, buf.String())

	assert.Error(t, ConfigureTracing("loud", &buf))
}
