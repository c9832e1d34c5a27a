package project

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/testutil"
)

const sampleMetadata = `{
  "packages": [
    {
      "name": "app",
      "version": "0.1.0",
      "manifest_path": "/work/app/Cargo.toml",
      "targets": [
        {"kind": ["bin"], "name": "app", "src_path": "/work/app/src/main.rs"},
        {"kind": ["lib"], "name": "app_core", "src_path": "/work/app/src/lib.rs"},
        {"kind": ["bin"], "name": "helper", "src_path": "/work/app/src/bin/helper.rs"}
      ]
    }
  ],
  "workspace_members": ["app 0.1.0 (path+file:///work/app)"],
  "target_directory": "/work/app/target",
  "version": 1,
  "workspace_root": "/work/app"
}`

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}

	if md.WorkspaceRoot != "/work/app" || md.TargetDirectory != "/work/app/target" {
		t.Errorf("unexpected roots: %+v", md)
	}
	if len(md.Packages) != 1 || md.Packages[0].Name != "app" || md.Packages[0].Version != "0.1.0" {
		t.Fatalf("unexpected packages: %+v", md.Packages)
	}
	if got := md.Binaries(); !reflect.DeepEqual(got, []string{"app", "helper"}) {
		t.Errorf("Binaries() = %v", got)
	}
	if got := md.ArtifactDir("release"); got != filepath.Join("/work/app/target", "release") {
		t.Errorf("ArtifactDir = %q", got)
	}
}

func TestParseMetadata_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "error: could not find Cargo.toml"},
		{"future version", `{"version": 2, "packages": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMetadata([]byte(tt.data)); !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMetadata_Summary(t *testing.T) {
	md, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatal(err)
	}
	props := &Properties{Target: "release", Arguments: []string{"-v"}}

	doc, err := md.Summary(props)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !gjson.ValidBytes(doc) {
		t.Fatalf("invalid JSON: %s", doc)
	}

	checks := map[string]string{
		"target_directory":            "/work/app/target",
		"properties.target":           "release",
		"properties.arguments.0":      "-v",
		"packages.#":                  "1",
		"packages.0.name":             "app",
		"packages.0.targets.#":        "3",
		"packages.0.targets.1.name":   "app_core",
		"packages.0.targets.1.kind.0": "lib",
		"binaries.#":                  "2",
		"binaries.1":                  "helper",
		"artifacts.release":           filepath.Join("/work/app/target", "release"),
	}
	for path, want := range checks {
		if got := gjson.GetBytes(doc, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestMetadata_Markdown(t *testing.T) {
	md, err := ParseMetadata([]byte(sampleMetadata))
	if err != nil {
		t.Fatal(err)
	}

	out := md.Markdown(&Properties{Target: "release", Arguments: []string{"--port", "1"}})
	wants := []string{
		"# app 0.1.0",
		"| helper | bin |",
		"`/work/app/target`",
		"**Binaries:** app, helper",
		"**Artifacts (release):** `" + filepath.Join("/work/app/target", "release") + "`",
		"`--port 1`",
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}

	if out := md.Markdown(nil); !strings.Contains(out, "**Artifacts (debug):**") {
		t.Errorf("markdown without properties should show debug artifacts:\n%s", out)
	}
}

func TestTarget_IsBinary(t *testing.T) {
	tests := []struct {
		kinds []string
		want  bool
	}{
		{[]string{"bin"}, true},
		{[]string{"lib"}, false},
		{[]string{"lib", "bin"}, true},
		{nil, false},
	}

	for _, tt := range tests {
		if got := (Target{Name: "x", Kinds: tt.kinds}).IsBinary(); got != tt.want {
			t.Errorf("IsBinary(%v) = %v, want %v", tt.kinds, got, tt.want)
		}
	}
}

func TestReadMetadata_FakeCargo(t *testing.T) {
	dir := t.TempDir()
	script := testutil.FakeCargo(t, "cat <<'JSON'\n"+sampleMetadata+"\nJSON\n")

	md, err := ReadMetadata(context.Background(), script, dir)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if len(md.Packages) != 1 {
		t.Errorf("expected 1 package, got %d", len(md.Packages))
	}
}

func TestReadMetadata_Failure(t *testing.T) {
	dir := t.TempDir()
	script := testutil.FakeCargo(t, "echo 'error: manifest not found' 1>&2\nexit 101\n")

	_, err := ReadMetadata(context.Background(), script, dir)
	if err == nil || !strings.Contains(err.Error(), "manifest not found") {
		t.Errorf("expected cargo's message in error, got %v", err)
	}
}
