package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() {
		tracing.SetTraceSelector(tracing.SelectorForAdapter(tracing.NoOpTrace))
	})
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const helloProgram = `
class Hello {
    static void main() {
        System.out.println("hello");
    }
}
`

const twoEntries = `
class A {
    static void main() {
        System.out.println("A");
    }
}

class B {
    static void helper() {
    }
}

class C {
    static void main() {
        System.out.println("C");
    }
}
`

func TestRunPrintsProgramOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Hello.mj")
	writeFile(t, path, helloProgram)

	code, stdout, stderr := runCLI(t, "run", path)
	assert.Equal(t, 0, code, stderr)
	assert.Equal(t, "hello\n", stdout)

	code, stdout, _ = runCLI(t, path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", stdout)
}

func TestExitCodesPerPhase(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   int
		stderr string
	}{
		{"lexical", "class A { /* open", 2, "lexical error: unterminated block comment"},
		{"syntax", "class A {", 3, "syntax error: expected"},
		{"semantic", "class A extends Missing { }", 4, "semantic error: UnknownClass"},
		{"duplicate main", twoEntries, 4, "semantic error: DuplicateDeclaration"},
		{"runtime", "class A { static void main() { int z = 0; int x = 1 / z; } }", 5, "runtime error: DivisionByZero: / by zero\n\tat A.main()"},
		{"no main", "class A { }", 5, "runtime error: EntryPointMissing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "Prog.mj")
			writeFile(t, path, tt.src)
			code, _, stderr := runCLI(t, "run", path)
			assert.Equal(t, tt.code, code, stderr)
			assert.Contains(t, stderr, path+":")
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestUsageErrors(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage:")

	code, _, stderr = runCLI(t, "run")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires a source file")

	code, _, _ = runCLI(t, "run", "--bogus", "x.mj")
	assert.Equal(t, 1, code)

	code, _, stderr = runCLI(t, "run", "a.mj", "b.mj")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unexpected arguments: b.mj")

	code, _, stderr = runCLI(t, "run", filepath.Join(t.TempDir(), "missing.mj"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error:")
}

func TestHelpAndVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "mj step")

	code, stdout, _ = runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, cliToolVersion+"\n", stdout)
}

func TestCheckAndParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Hello.mj")
	writeFile(t, path, helloProgram)

	code, stdout, _ := runCLI(t, "check", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok\n", stdout)

	code, stdout, _ = runCLI(t, "parse", path)
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "(unit\n"), stdout)
	assert.Contains(t, stdout, "Hello")

	bad := filepath.Join(t.TempDir(), "Bad.mj")
	writeFile(t, bad, "class A extends Missing { }")
	code, _, _ = runCLI(t, "check", bad)
	assert.Equal(t, 4, code)
	code, _, _ = runCLI(t, "parse", bad)
	assert.Equal(t, 0, code)
}

func TestConfigSelectsEntryClass(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Prog.mj")
	writeFile(t, path, `
class A {
    static void main() {
        System.out.println("A");
    }
}

class B extends A {
    static void start() {
    }
}
`)
	code, stdout, _ := runCLI(t, path)
	require.Equal(t, 0, code)
	assert.Equal(t, "A\n", stdout)

	writeFile(t, filepath.Join(dir, "mj.yml"), "main: B\n")
	code, _, stderr := runCLI(t, path)
	assert.Equal(t, 5, code)
	assert.Contains(t, stderr, "EntryPointMissing: class B does not declare static void main()")

	code, stdout, _ = runCLI(t, "run", "--main", "A", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "A\n", stdout)

	other := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, other, "main: A\n")
	code, stdout, _ = runCLI(t, "run", "--config", other, path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "A\n", stdout)
}

func TestBadConfigIsAHostError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Hello.mj")
	writeFile(t, path, helloProgram)
	writeFile(t, filepath.Join(dir, "mj.yml"), "entry: Hello\n")

	code, stdout, stderr := runCLI(t, path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "field entry not found")

	code, _, _ = runCLI(t, "run", "--trace", "shout", filepath.Join(t.TempDir(), "Hello.mj"))
	assert.Equal(t, 1, code)
}

func TestLimitsFromFlags(t *testing.T) {
	dir := t.TempDir()
	loop := filepath.Join(dir, "Loop.mj")
	writeFile(t, loop, `
class Loop {
    static void main() {
        int i = 0;
        while (true) {
            i++;
        }
    }
}
`)
	code, _, stderr := runCLI(t, "run", "--max-steps", "20", loop)
	assert.Equal(t, 5, code)
	assert.Contains(t, stderr, "Interrupted: step limit of 20 reached")

	deep := filepath.Join(dir, "Deep.mj")
	writeFile(t, deep, `
class Deep {
    static int down(int n) {
        return Deep.down(n + 1);
    }

    static void main() {
        Deep.down(0);
    }
}
`)
	code, _, stderr = runCLI(t, "run", "--max-depth", "10", deep)
	assert.Equal(t, 5, code)
	assert.Contains(t, stderr, "StackOverflow: call depth exceeded 10 frames")

	code, _, stderr = runCLI(t, "run", "--max-depth", "20000", deep)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "must not exceed 10000")
}

func TestStepPrintsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Count.mj")
	writeFile(t, path, `
class Count {
    static void main() {
        int a = 1;
        int b = a + 1;
        System.out.println(Integer.toString(b));
    }
}
`)
	code, stdout, stderr := runCLI(t, "step", path)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, 3, strings.Count(stdout, "--- step "))
	assert.Contains(t, stdout, "--- step 1: Count.main() at 3:9\n")
	assert.Contains(t, stdout, "state: Running")
	assert.Contains(t, stdout, "name: a")
	assert.True(t, strings.HasSuffix(stdout, "2\n"), stdout)

	code, stdout, _ = runCLI(t, "step", "--steps", "2", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, strings.Count(stdout, "--- step "))
	assert.NotContains(t, stdout, "name: b")
}
