package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"p2composite/internal/infra/fetch"
	"p2composite/internal/infra/fs"
	"p2composite/internal/infra/p2"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	fetcher := fetch.New()
	env := Env{
		Stdout: &stdout,
		Stderr: &stderr,
		Store:  p2.Store{Fetcher: fetcher, FS: fs.OSFS{}},
		Fetch:  fetcher,
	}
	code := Execute(context.Background(), env, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestNoArgumentsIsCommandLineError(t *testing.T) {
	res := run(t)
	if res.code != ExitCommandLine {
		t.Fatalf("expected exit %d, got %d", ExitCommandLine, res.code)
	}
	if !strings.Contains(res.stderr, "Usage: -location repositoryURI") {
		t.Fatalf("expected usage on stderr, got:\n%s", res.stderr)
	}
	if res.stdout != "" {
		t.Fatalf("expected empty stdout, got %q", res.stdout)
	}
}

func TestMalformedArgumentsPrintUsage(t *testing.T) {
	res := run(t, "-location", t.TempDir(), "-validate", "bogus")
	if res.code != ExitCommandLine {
		t.Fatalf("expected exit %d, got %d", ExitCommandLine, res.code)
	}
	if !strings.Contains(res.stderr, "unknown comparator") || !strings.Contains(res.stderr, "-failOnExists") {
		t.Fatalf("expected error and usage, got:\n%s", res.stderr)
	}
}

func TestHelp(t *testing.T) {
	res := run(t, "-help")
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d", res.code)
	}
	if !strings.Contains(res.stderr, "-repositoryName") {
		t.Fatalf("expected usage, got:\n%s", res.stderr)
	}
}

func TestCreateAddRemoveAndList(t *testing.T) {
	dir := t.TempDir()

	res := run(t, "-location", dir, "-add", "child1,child2, child3", "-repositoryName", "Releases")
	if res.code != ExitOK {
		t.Fatalf("create failed with %d:\n%s", res.code, res.stderr)
	}
	for _, name := range []string{"compositeContent.xml", "compositeArtifacts.xml"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if !strings.Contains(string(data), `name="Releases"`) {
			t.Fatalf("%s should carry the repository name", name)
		}
	}

	res = run(t, "-location", dir, "-remove", "child2")
	if res.code != ExitOK {
		t.Fatalf("remove failed with %d:\n%s", res.code, res.stderr)
	}

	res = run(t, "-location", dir, "-list")
	if res.code != ExitOK {
		t.Fatalf("list failed with %d:\n%s", res.code, res.stderr)
	}
	if res.stdout != "child1\nchild3\n" {
		t.Fatalf("unexpected list output %q", res.stdout)
	}
}

func TestCompressedRepository(t *testing.T) {
	dir := t.TempDir()

	res := run(t, "-location", dir, "-add", "child", "-compressed")
	if res.code != ExitOK {
		t.Fatalf("create failed with %d:\n%s", res.code, res.stderr)
	}
	for _, name := range []string{"compositeContent.jar", "compositeArtifacts.jar"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "compositeContent.xml")); err == nil {
		t.Fatalf("compressed repository should not have an xml index")
	}

	res = run(t, "-location", dir, "-list")
	if res.code != ExitOK || res.stdout != "child\n" {
		t.Fatalf("unexpected list result %d %q:\n%s", res.code, res.stdout, res.stderr)
	}
}

func TestFailOnExists(t *testing.T) {
	dir := t.TempDir()
	if res := run(t, "-location", dir); res.code != ExitOK {
		t.Fatalf("create failed with %d:\n%s", res.code, res.stderr)
	}

	res := run(t, "-location", dir, "-failOnExists", "-add", "late")
	if res.code != ExitRun {
		t.Fatalf("expected exit %d, got %d", ExitRun, res.code)
	}
	if !strings.Contains(res.stderr, "already exists") {
		t.Fatalf("expected already exists message, got:\n%s", res.stderr)
	}
}

func TestListWithoutRepository(t *testing.T) {
	dir := t.TempDir()
	res := run(t, "-location", dir, "-list")
	if res.code != ExitRun {
		t.Fatalf("expected exit %d, got %d", ExitRun, res.code)
	}
	if res.stdout != "" {
		t.Fatalf("expected empty stdout, got %q", res.stdout)
	}
	first, _, _ := strings.Cut(res.stderr, "\n")
	if !strings.HasPrefix(first, "Repository not found: file:") ||
		!strings.Contains(first, filepath.ToSlash(dir)) ||
		!strings.Contains(first, "no valid destinations") {
		t.Fatalf("expected the checked location and cause, got %q", first)
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	res := run(t, "-location", dir, "-add", "child", "-verbose", "-unknown")
	if res.code != ExitOK {
		t.Fatalf("create failed with %d:\n%s", res.code, res.stderr)
	}
	if !strings.Contains(res.stderr, "Verbose: ignoring unknown option -unknown") {
		t.Fatalf("expected ignored option in verbose output, got:\n%s", res.stderr)
	}
	if !strings.Contains(res.stderr, "Verbose: Added child") {
		t.Fatalf("expected child log, got:\n%s", res.stderr)
	}
}
