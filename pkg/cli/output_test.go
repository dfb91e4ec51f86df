package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type row struct {
	Name  string `json:"name" yaml:"name"`
	Likes int    `json:"likes" yaml:"likes"`
}

type rows []row

func (r rows) Headers() []string { return []string{"NAME", "LIKES"} }

func (r rows) Rows() [][]string {
	out := make([][]string, len(r))
	for i, x := range r {
		out[i] = []string{x.Name, FormatBytes(int64(x.Likes))}
	}
	return out
}

var sample = rows{{"Night Drive", 4}, {"Golden Shadow", 3}}

func TestOutputFormats(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{FormatYAML, []string{"- name: Night Drive", "likes: 4"}},
		{"", []string{"- name: Night Drive"}},
		{FormatJSON, []string{`"name": "Night Drive"`, `"likes": 3`}},
		{FormatTable, []string{"NAME", "Golden Shadow", "╭"}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Output(sample, OutputOptions{Format: tt.format, Writer: &buf}); err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("%s output missing %q:\n%s", tt.format, w, buf.String())
			}
		}
	}
}

func TestOutputUnsupported(t *testing.T) {
	if err := Output(sample, OutputOptions{Format: "xml", Writer: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestOutputTableFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(map[string]int{"count": 2}, OutputOptions{Format: FormatTable, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "count: 2" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestOutputRaw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output([]byte("abc"), OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "abc" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := Output(sample, OutputOptions{Format: FormatJSON, File: path}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []row
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Name != "Golden Shadow" {
		t.Fatalf("got %+v", got)
	}
}

func TestOutputJQ(t *testing.T) {
	var buf bytes.Buffer
	err := Output(sample, OutputOptions{Format: FormatJSON, JQ: ".[] | select(.likes > 3) | .name", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `"Night Drive"` {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestFilter(t *testing.T) {
	got, err := Filter(sample, ".[].likes")
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := got.([]any)
	if !ok || len(vals) != 2 {
		t.Fatalf("got %#v", got)
	}
	if _, err := Filter(sample, ".[ "); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Filter(sample, `error("boom")`); err == nil {
		t.Fatal("expected runtime error")
	}
}

func TestOutputBytes(t *testing.T) {
	if err := OutputBytes([]byte("x"), ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	path := filepath.Join(t.TempDir(), "a.wav")
	if err := OutputBytes([]byte("x"), path); err != nil {
		t.Fatal(err)
	}
}
