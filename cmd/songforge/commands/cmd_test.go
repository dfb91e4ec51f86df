package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/songforge/pkg/catalog"
)

// setupTestEnv points the config directory at a fresh temp dir and returns it.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SONGFORGE_CONFIG_DIR", dir)
	for _, k := range []string{"SONGFORGE_COVER_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY"} {
		t.Setenv(k, "")
	}
	return dir
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	formatOutput = "yaml"
	jqExpr = ""
	outputFile = ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		if stderr == "" {
			stderr = err.Error()
		}
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeSongs(t *testing.T, stdout string) []catalog.Song {
	t.Helper()
	var out []catalog.Song
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	return out
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "songforge") {
		t.Fatalf("expected 'songforge', got: %s", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, `"version"`) {
		t.Fatalf("expected JSON, got: %s", stdout)
	}
}

func TestGenerateDefaults(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "generate", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	got := decodeSongs(t, stdout)
	if len(got) != catalog.DefaultCount {
		t.Fatalf("got %d songs, want %d", len(got), catalog.DefaultCount)
	}
	for i, s := range got {
		if s.Index != i+1 || s.Seed != catalog.DefaultSeed || s.Locale != "en" {
			t.Fatalf("song %d = %+v", i, s)
		}
	}

	again, _, _ := runCmd(t, "generate", "--format", "json")
	if again != stdout {
		t.Fatal("generate is not deterministic")
	}
}

func TestGeneratePage(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "generate", "--page", "2", "--count", "2", "--lang", "de_DE", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	got := decodeSongs(t, stdout)
	if len(got) != 2 || got[0].Index != 3 || got[1].Index != 4 {
		t.Fatalf("indexes = %+v", got)
	}
	if got[0].Locale != "de" {
		t.Fatalf("locale = %q", got[0].Locale)
	}
}

func TestGenerateRequestFile(t *testing.T) {
	dir := setupTestEnv(t)
	req := writeTestFile(t, dir, "page.yaml", "seed: 42\ncount: 3\nlocale: uk\n")

	stdout, stderr, code := runCmd(t, "generate", "-f", req, "--count", "2", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	got := decodeSongs(t, stdout)
	if len(got) != 2 {
		t.Fatalf("flag should win over file: got %d songs", len(got))
	}
	if got[0].Seed != 42 || got[0].Locale != "uk" {
		t.Fatalf("song = %+v", got[0])
	}
}

func TestGenerateTable(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "generate", "--count", "2", "--format", "table")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"INDEX", "TITLE", "LENGTH", "0:04"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in table, got: %s", want, stdout)
		}
	}
}

func TestGenerateJQ(t *testing.T) {
	setupTestEnv(t)

	stdout, stderr, code := runCmd(t, "generate", "--count", "3", "--format", "json", "--jq", "[.[].index]")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var idx []int
	if err := json.Unmarshal([]byte(stdout), &idx); err != nil {
		t.Fatal(err)
	}
	if len(idx) != 3 || idx[2] != 3 {
		t.Fatalf("indexes = %v", idx)
	}
}

func TestGenerateZeroCount(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "generate", "--count", "0", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if got := decodeSongs(t, stdout); len(got) != 0 {
		t.Fatalf("got %d songs", len(got))
	}
}

func TestGenerateNegativeCount(t *testing.T) {
	setupTestEnv(t)

	_, stderr, code := runCmd(t, "generate", "--count", "-1")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "negative") {
		t.Fatalf("stderr = %s", stderr)
	}
}

func TestGenerateRejectsOutOfRangeLikes(t *testing.T) {
	dir := setupTestEnv(t)
	req := writeTestFile(t, dir, "huge.yaml", "likes: 1e20\n")

	tests := []struct {
		name string
		args []string
	}{
		{"inf flag", []string{"generate", "--likes", "inf"}},
		{"huge flag", []string{"generate", "--likes", "1e20"}},
		{"negative flag", []string{"generate", "--likes", "-1"}},
		{"request file", []string{"generate", "-f", req}},
		{"export", []string{"export", "--likes", "inf", "-o", filepath.Join(dir, "x.zip")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCmd(t, tt.args...)
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, "likes must be between") {
				t.Fatalf("stderr = %s", stderr)
			}
		})
	}
}

func TestGenerateBrokenConfig(t *testing.T) {
	dir := setupTestEnv(t)
	writeTestFile(t, dir, "config.yaml", "store:\n  backend: redis\n")

	_, stderr, code := runCmd(t, "generate")
	if code == 0 {
		t.Fatal("expected non-zero exit")
	}
	if !strings.Contains(stderr, "config not available") {
		t.Fatalf("stderr = %s", stderr)
	}

	// version does not need the config.
	if _, _, code := runCmd(t, "version"); code != 0 {
		t.Fatalf("version exit %d", code)
	}
}

func TestRenderIndex(t *testing.T) {
	dir := setupTestEnv(t)
	out := filepath.Join(dir, "song.wav")

	stdout, stderr, code := runCmd(t, "render", "--index", "2", "-o", out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "audio/wav") {
		t.Fatalf("stdout = %s", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:4]) != "RIFF" {
		t.Fatalf("not a wav file: %q", data[:4])
	}
	// 8 notes of 0.5 s at 44.1 kHz, 16-bit mono, plus the header.
	if want := 44 + 8*22050*2; len(data) != want {
		t.Fatalf("size = %d, want %d", len(data), want)
	}
}

func TestRenderNotes(t *testing.T) {
	dir := setupTestEnv(t)
	out := filepath.Join(dir, "c.wav")

	_, stderr, code := runCmd(t, "render", "--notes", "C4", "-o", out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 44+22050*2 {
		t.Fatalf("size = %d", info.Size())
	}
}

func TestRenderErrors(t *testing.T) {
	dir := setupTestEnv(t)
	out := filepath.Join(dir, "x.wav")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no output", []string{"render", "--index", "1"}, "-o"},
		{"no source", []string{"render", "-o", out}, "--index or --notes"},
		{"bad index", []string{"render", "--index", "0", "-o", out}, "at least 1"},
		{"unknown note", []string{"render", "--notes", "C4,X9", "-o", out}, "X9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runCmd(t, tt.args...)
			if code == 0 {
				t.Fatal("expected non-zero exit")
			}
			if !strings.Contains(stderr, tt.want) {
				t.Fatalf("stderr = %s, want %q", stderr, tt.want)
			}
		})
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("failed render left a file: %v", err)
	}
}

func TestExportToFile(t *testing.T) {
	dir := setupTestEnv(t)
	out := filepath.Join(dir, "page.zip")

	_, stderr, code := runCmd(t, "export", "--count", "3", "-o", out)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	if len(zr.File) != 3 {
		t.Fatalf("archive has %d entries", len(zr.File))
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".wav") {
			t.Fatalf("entry %q", f.Name)
		}
	}
}

func TestExportToDest(t *testing.T) {
	dir := setupTestEnv(t)
	dest := filepath.Join(dir, "exports")

	stdout, stderr, code := runCmd(t, "export", "--count", "2", "--seed", "7", "--page", "3", "--dest", dest)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	path := filepath.Join(dest, "songs-3-7.zip")
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Exported 2 songs") {
		t.Fatalf("stdout = %s", stdout)
	}
}

func TestLocales(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "locales", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var list []localeInfo
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Code != "en" || !list[0].Default || list[2].Tag != "uk_UA" {
		t.Fatalf("locales = %+v", list)
	}
}

func TestConfigInit(t *testing.T) {
	dir := setupTestEnv(t)

	stdout, _, code := runCmd(t, "config", "path")
	if code != 0 || strings.TrimSpace(stdout) != filepath.Join(dir, "config.yaml") {
		t.Fatalf("path = %q (exit %d)", stdout, code)
	}

	if _, stderr, code := runCmd(t, "config", "init"); code != 0 {
		t.Fatalf("init exit %d: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCmd(t, "config", "init")
	if code == 0 || !strings.Contains(stderr, "already exists") {
		t.Fatalf("second init: exit %d, stderr %s", code, stderr)
	}
	if _, stderr, code := runCmd(t, "config", "init", "--force"); code != 0 {
		t.Fatalf("init --force exit %d: %s", code, stderr)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	dir := setupTestEnv(t)
	writeTestFile(t, dir, "config.yaml", "cover:\n  provider: openai\n  api_key: sk-1234567890abcdef\n")

	stdout, stderr, code := runCmd(t, "config", "show", "--format", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	if strings.Contains(stdout, "sk-1234567890abcdef") {
		t.Fatalf("secret leaked: %s", stdout)
	}
	if !strings.Contains(stdout, "sk-1****cdef") {
		t.Fatalf("masked key missing: %s", stdout)
	}
}
