package services

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runCmd(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command failed: %s %v\nOutput: %s\nError: %v", name, args, out, err)
	}
	return string(out)
}

// setupGitRepo creates a repository with one commit
func setupGitRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	runCmd(t, dir, "git", "init")
	runCmd(t, dir, "git", "config", "user.email", "test@upkg.dev")
	runCmd(t, dir, "git", "config", "user.name", "upkg Test Bot")
	runCmd(t, dir, "git", "config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	runCmd(t, dir, "git", "add", ".")
	runCmd(t, dir, "git", "commit", "-m", "initial")
	return dir
}

func TestGitService_ShortHash(t *testing.T) {
	dir := setupGitRepo(t)
	svc := NewGitService(dir)

	tag := svc.ShortHash(context.Background())
	got, ok := tag.Value()
	if !ok {
		t.Fatal("expected a build tag inside a repository")
	}

	want := strings.TrimSpace(runCmd(t, dir, "git", "rev-parse", "--short", "HEAD"))
	if got != want {
		t.Errorf("ShortHash() = %q, want %q", got, want)
	}
	if strings.ContainsAny(got, "\r\n ") {
		t.Errorf("tag should be trimmed, got %q", got)
	}
}

func TestGitService_ShortHash_NotARepository(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	// Keep git from discovering a repository above the temp dir
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	svc := NewGitService(dir)
	if _, ok := svc.ShortHash(context.Background()).Value(); ok {
		t.Error("expected absent tag outside a repository")
	}
}

func TestGitService_ShortHash_EmptyRepository(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	runCmd(t, dir, "git", "init")

	svc := NewGitService(dir)
	if _, ok := svc.ShortHash(context.Background()).Value(); ok {
		t.Error("expected absent tag for a repository without commits")
	}
}

func TestGitService_ShortHash_GitMissing(t *testing.T) {
	svc := NewGitService(t.TempDir())
	svc.gitPath = "upkg-no-such-git-binary"

	if svc.IsAvailable() {
		t.Fatal("expected missing binary to be unavailable")
	}
	if _, ok := svc.ShortHash(context.Background()).Value(); ok {
		t.Error("expected absent tag when git is missing")
	}
}
