package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/mdvault/internal/config"
	"github.com/aidanlsb/mdvault/internal/testutil"
)

// runCLI executes the root command with args and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	prevStdout, prevNow := stdout, now
	resetFlags()
	t.Cleanup(func() {
		stdout, now = prevStdout, prevNow
		resetFlags()
	})
	stdout = &buf
	now = func() time.Time { return time.Date(2024, 11, 23, 15, 0, 0, 0, time.UTC) }

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags clears flag values cobra keeps between executions.
func resetFlags() {
	jsonOutput, hoverRaw = false, false
	vaultName, vaultPathFlag, configPath = "", "", ""
	_ = indexCmd.Flags().Set("rebuild", "false")
	_ = initCmd.Flags().Set("name", "")
}

func decodeResponse(t *testing.T, out string, data interface{}) Response {
	t.Helper()
	var resp Response
	resp.Data = data
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	return resp
}

func linkVault(t *testing.T) *testutil.TestVault {
	return testutil.NewTestVault(t).
		WithConfig("index_cache: false\nwatch: false\n").
		WithFile("alpha.md", "# Alpha\n\n## Intro\nhello there\n").
		WithFile("2024-11-24.md", "tomorrow\n").
		WithFile("notes/today.md", "see [[al\nand [x](alp\nplain text\nback to [[alpha#Intro]]\n").
		Build()
}

func TestResolveVaultPath(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	c := &config.Config{
		DefaultVault: "main",
		Vaults:       map[string]string{"main": dir, "other": other},
	}

	tests := []struct {
		name     string
		cfg      *config.Config
		explicit string
		vault    string
		want     string
		wantErr  bool
	}{
		{name: "explicit path wins", cfg: c, explicit: other, vault: "main", want: other},
		{name: "named vault", cfg: c, vault: "other", want: other},
		{name: "default vault", cfg: c, want: dir},
		{name: "unknown name", cfg: c, vault: "nope", wantErr: true},
		{name: "missing default", cfg: &config.Config{DefaultVault: "gone"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveVaultPath(tt.cfg, tt.explicit, tt.vault)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveVaultPath: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("current directory", func(t *testing.T) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		got, err := resolveVaultPath(&config.Config{}, "", "")
		if err != nil {
			t.Fatalf("resolveVaultPath: %v", err)
		}
		if got != wd {
			t.Fatalf("got %q, want %q", got, wd)
		}
	})
}

func TestParseDocumentArgs(t *testing.T) {
	v := linkVault(t)

	doc, err := parseDocumentArgs(v.Path, []string{"notes/today.md", "1", "11"})
	if err != nil {
		t.Fatalf("parseDocumentArgs: %v", err)
	}
	if doc.Path != "notes/today.md" || doc.Position.Line != 1 || doc.Position.Character != 11 {
		t.Fatalf("got %+v", doc)
	}

	doc, err = parseDocumentArgs(v.Path, []string{v.Abs("alpha.md"), "0", "0"})
	if err != nil || doc.Path != "alpha.md" {
		t.Fatalf("absolute path: got %+v, %v", doc, err)
	}

	for _, args := range [][]string{
		{"notes/today.md", "-1", "0"},
		{"notes/today.md", "0", "x"},
		{"mdvault.yaml", "0", "0"},
		{filepath.Join(t.TempDir(), "elsewhere.md"), "0", "0"},
	} {
		if _, err := parseDocumentArgs(v.Path, args); err == nil {
			t.Errorf("parseDocumentArgs(%v): expected error", args)
		}
	}
}

func TestCompleteCommandJSON(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "complete", "notes/today.md", "0", "8", "--json")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	var result completionResult
	resp := decodeResponse(t, out, &result)
	if !resp.OK {
		t.Fatalf("expected ok=true; out=%s", out)
	}
	if result.Syntax != "wiki" || result.Filter != "al" {
		t.Fatalf("syntax=%q filter=%q", result.Syntax, result.Filter)
	}

	found := map[string]completionJSON{}
	for _, item := range result.Items {
		found[item.Label] = item
	}
	if item, ok := found["alpha"]; !ok || item.InsertText != "alpha" || item.Kind != "File" {
		t.Errorf("alpha item = %+v (ok=%v)", item, ok)
	}
	if _, ok := found["alpha#Intro"]; !ok {
		t.Errorf("expected heading candidate, got %+v", result.Items)
	}
}

func TestCompleteCommandMarkdownSnippet(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "complete", "notes/today.md", "1", "11", "--json")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	var result completionResult
	decodeResponse(t, out, &result)
	if result.Syntax != "markdown" {
		t.Fatalf("syntax = %q, want markdown", result.Syntax)
	}
	for _, item := range result.Items {
		if item.Label == "alpha" {
			if !item.Snippet || item.InsertText != "[${1:x}](alpha.md)" {
				t.Fatalf("alpha item = %+v", item)
			}
			return
		}
	}
	t.Fatalf("no alpha item in %+v", result.Items)
}

func TestCompleteCommandEmptyWikiLinkOffersCurrentDocument(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithConfig("index_cache: false\nwatch: false\n").
		WithFile("alpha.md", "# Alpha\n").
		WithFile("scratch.md", "# Scratch\nlink [[\n").
		Build()

	out, err := runCLI(t, "--vault-path", v.Path, "complete", "scratch.md", "1", "7", "--json")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	var result completionResult
	decodeResponse(t, out, &result)
	got := map[string]bool{}
	for _, item := range result.Items {
		got[item.Label] = true
	}
	if !got["scratch"] || !got["scratch#Scratch"] {
		t.Fatalf("expected current document targets, got %+v", result.Items)
	}
	if got["alpha"] {
		t.Fatalf("documents that are not open should not be offered: %+v", result.Items)
	}
}

func TestCompleteCommandOutsideLink(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "complete", "notes/today.md", "2", "3")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "No completions.") {
		t.Fatalf("out = %q", out)
	}
}

func TestCompleteCommandMissingDocument(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "complete", "nope.md", "0", "0", "--json")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	resp := decodeResponse(t, out, nil)
	if resp.OK || resp.Error == nil || resp.Error.Code != ErrFileNotFound {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHoverCommand(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "hover", "notes/today.md", "3", "12", "--json")
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	var result hoverResult
	decodeResponse(t, out, &result)
	if !result.Found {
		t.Fatalf("expected a hover result; out=%s", out)
	}
	if result.Target != "alpha#Intro" || result.Kind != "heading" {
		t.Fatalf("target=%q kind=%q", result.Target, result.Kind)
	}
	if !strings.Contains(result.Markdown, "## Intro\nhello there") {
		t.Fatalf("markdown = %q", result.Markdown)
	}

	raw, err := runCLI(t, "--vault-path", v.Path, "hover", "notes/today.md", "3", "12")
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	if raw != result.Markdown {
		t.Fatalf("raw output = %q, want %q", raw, result.Markdown)
	}
}

func TestHoverCommandNoLink(t *testing.T) {
	v := linkVault(t)

	out, err := runCLI(t, "--vault-path", v.Path, "hover", "notes/today.md", "2", "1")
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	if !strings.Contains(out, "No link target") {
		t.Fatalf("out = %q", out)
	}
}

func TestIndexCommand(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithFile("a.md", "# A\n").
		WithFile("b.md", "[[a]]\n").
		Build()

	out, err := runCLI(t, "--vault-path", v.Path, "index", "--json")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	var first indexResult
	decodeResponse(t, out, &first)
	if !first.Enabled || first.Files != 2 || first.Parsed != 2 || first.Indexed != 2 {
		t.Fatalf("first = %+v", first)
	}

	out, err = runCLI(t, "--vault-path", v.Path, "index", "--json")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	var second indexResult
	decodeResponse(t, out, &second)
	if second.Cached != 2 || second.Parsed != 0 {
		t.Fatalf("second = %+v", second)
	}

	out, err = runCLI(t, "--vault-path", v.Path, "index", "--rebuild", "--json")
	if err != nil {
		t.Fatalf("index --rebuild: %v", err)
	}
	var rebuilt indexResult
	decodeResponse(t, out, &rebuilt)
	if !rebuilt.Rebuilt || rebuilt.Parsed != 2 {
		t.Fatalf("rebuilt = %+v", rebuilt)
	}
}

func TestIndexCommandDisabled(t *testing.T) {
	v := testutil.NewTestVault(t).
		WithConfig("index_cache: false\n").
		WithFile("a.md", "a\n").
		Build()

	if _, err := runCLI(t, "--vault-path", v.Path, "index"); err == nil {
		t.Fatal("expected error when the index cache is disabled")
	}
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")

	if _, err := runCLI(t, "init", dir, "--name", "notes", "--config", cfgPath); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, p := range []string{config.VaultConfigFile, ".mdvault", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	gitignore, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if !strings.Contains(string(gitignore), ".mdvault/") {
		t.Errorf(".gitignore = %q", gitignore)
	}

	c, err := config.LoadFrom(cfgPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.DefaultVault != "notes" || c.Vaults["notes"] != dir {
		t.Fatalf("config = %+v", c)
	}

	// A second run keeps everything.
	out, err := runCLI(t, "init", dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if !strings.Contains(out, "Configuration preserved") {
		t.Fatalf("out = %q", out)
	}
	again, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if string(again) != string(gitignore) {
		t.Fatalf(".gitignore changed on second init: %q", again)
	}
}

func TestEnsureGitignoreAppends(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	status, err := ensureGitignore(dir)
	if err != nil {
		t.Fatalf("ensureGitignore: %v", err)
	}
	if status != "updated" {
		t.Fatalf("status = %q, want updated", status)
	}
	data, _ := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if !strings.HasPrefix(string(data), "*.tmp\n") || !strings.Contains(string(data), ".mdvault/\n") {
		t.Fatalf(".gitignore = %q", data)
	}
}

func TestVersionCommandJSONOutput(t *testing.T) {
	out, err := runCLI(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info struct {
		Version string `json:"version"`
		GOOS    string `json:"goos"`
	}
	resp := decodeResponse(t, out, &info)
	if !resp.OK || info.Version == "" || info.GOOS == "" {
		t.Fatalf("resp = %+v, info = %+v", resp, info)
	}
}
