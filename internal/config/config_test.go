package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeFile writes content to name inside a fresh temp dir and returns the path
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func mustLoad(t *testing.T, name, content string) *Document {
	t.Helper()
	doc, err := Load(writeFile(t, name, content))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	return doc
}

func TestLoad_Success(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "api.json", `{"api": {"key": "abc"}}`},
		{"yaml", "api.yaml", "api:\n  key: abc\n"},
		{"toml", "api.toml", "[api]\nkey = \"abc\"\n"},
		{"no extension defaults to json", "api", `{"api": {"key": "abc"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustLoad(t, tt.file, tt.content)
			if got, ok := doc.Lookup(KeyAPIKey); !ok || got != "abc" {
				t.Errorf("Lookup(%q) = %v, %v, want %q", KeyAPIKey, got, ok, "abc")
			}
		})
	}
}

func TestLoad_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error, got nil")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Path != path {
		t.Errorf("Load() error = %#v, want NotFoundError for %s", err, path)
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(dir) error = %v, want ErrNotFound", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"truncated json", "asset.json", `{"assets": [`},
		{"not json", "asset.json", `assets = nope`},
		{"bad yaml", "asset.yaml", "assets: [\n  - {symbol: BTC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("Load() error = %v, want ErrParse", err)
			}
			if !strings.Contains(err.Error(), path) {
				t.Errorf("Load() error = %q, want it to reference %s", err.Error(), path)
			}
		})
	}
}

func TestLoad_ParseErrorPosition(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
		wantCol  int
		wantText string
	}{
		{
			name:     "json syntax",
			file:     "asset.json",
			content:  "{\n  \"assets\": [\n  oops\n]}",
			wantLine: 3,
			wantCol:  3,
			wantText: "line 3 column 3 (char 19)",
		},
		{
			name:     "json top level not an object",
			file:     "asset.json",
			content:  "[1, 2]",
			wantLine: 1,
			wantCol:  1,
			wantText: "line 1 column 1",
		},
		{
			name:     "toml",
			file:     "asset.toml",
			content:  "[api]\nkey = = 1\n",
			wantLine: 2,
			wantText: "line 2 column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Load() error = %v, want *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
			if tt.wantCol > 0 && pe.Column != tt.wantCol {
				t.Errorf("Column = %d, want %d", pe.Column, tt.wantCol)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestLoad_YAMLParseErrorNamesLine(t *testing.T) {
	_, err := Load(writeFile(t, "asset.yaml", "assets:\n  - symbol: BTC\n  bad: [\n"))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Load() error = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "line ") {
		t.Errorf("Load() error = %q, want the YAML line", err.Error())
	}
}

func TestResolve_KeysAreCaseSensitive(t *testing.T) {
	apiDoc := mustLoad(t, "api.json", `{"api": {"key": "abc"}}`)
	assetDoc := mustLoad(t, "asset.json", `{"assets": [
		{"Symbol": "BTC"},
		{"SYMBOL": "ETH"},
		{"symbol": "SOL"}
	]}`)
	outputDoc := mustLoad(t, "output.json", `{"output_path": "out"}`)

	cfg, err := Resolve(apiDoc, assetDoc, outputDoc)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %v", err)
	}

	want := []Asset{{}, {}, {Symbol: "SOL", HasSymbol: true}}
	if diff := cmp.Diff(want, cfg.Assets); diff != "" {
		t.Errorf("Assets mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Success(t *testing.T) {
	apiDoc := mustLoad(t, "api.json", `{"api": {"key": "abc"}}`)
	assetDoc := mustLoad(t, "asset.json", `{"assets": [
		{"symbol": "BTC", "name": "Bitcoin"},
		{"symbol": "ETH"},
		{},
		{"symbol": "BTC"},
		{"symbol": ""}
	]}`)
	outputDoc := mustLoad(t, "output.json", `{"output_path": "./out"}`)

	cfg, err := Resolve(apiDoc, assetDoc, outputDoc)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %v", err)
	}

	if cfg.APIKey.Reveal() != "abc" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey.Reveal(), "abc")
	}
	if cfg.OutputPath != "./out" {
		t.Errorf("OutputPath = %q, want %q", cfg.OutputPath, "./out")
	}

	want := []Asset{
		{Symbol: "BTC", HasSymbol: true},
		{Symbol: "ETH", HasSymbol: true},
		{},
		{Symbol: "BTC", HasSymbol: true},
		{Symbol: "", HasSymbol: true},
	}
	if diff := cmp.Diff(want, cfg.Assets); diff != "" {
		t.Errorf("Assets mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_EmptyAssetList(t *testing.T) {
	apiDoc := mustLoad(t, "api.json", `{"api": {"key": "abc"}}`)
	assetDoc := mustLoad(t, "asset.json", `{"assets": []}`)
	outputDoc := mustLoad(t, "output.json", `{"output_path": "out"}`)

	cfg, err := Resolve(apiDoc, assetDoc, outputDoc)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %v", err)
	}
	if len(cfg.Assets) != 0 {
		t.Errorf("Assets = %v, want empty", cfg.Assets)
	}
}

func TestResolve_ShapeErrors(t *testing.T) {
	const (
		goodAPI    = `{"api": {"key": "abc"}}`
		goodAssets = `{"assets": [{"symbol": "BTC"}]}`
		goodOutput = `{"output_path": "out"}`
	)

	tests := []struct {
		name    string
		api     string
		assets  string
		output  string
		wantKey string
	}{
		{"api key missing", `{"api": {}}`, goodAssets, goodOutput, "api.key"},
		{"api section missing", `{"other": 1}`, goodAssets, goodOutput, "api.key"},
		{"api key not a string", `{"api": {"key": 42}}`, goodAssets, goodOutput, "api.key"},
		{"api key empty", `{"api": {"key": ""}}`, goodAssets, goodOutput, "api.key"},
		{"assets missing", goodAPI, `{"items": []}`, goodOutput, "assets"},
		{"assets not a sequence", goodAPI, `{"assets": {"symbol": "BTC"}}`, goodOutput, "assets"},
		{"asset not a mapping", goodAPI, `{"assets": ["BTC"]}`, goodOutput, "assets[0]"},
		{"symbol not a string", goodAPI, `{"assets": [{"symbol": "BTC"}, {"symbol": 7}]}`, goodOutput, "assets[1].symbol"},
		{"output path missing", goodAPI, goodAssets, `{}`, "output_path"},
		{"output path not a string", goodAPI, goodAssets, `{"output_path": ["out"]}`, "output_path"},
		{"flat dotted api key", `{"api.key": "abc"}`, goodAssets, goodOutput, "api.key"},
		{"api section upper case", `{"API": {"KEY": "abc"}}`, goodAssets, goodOutput, "api.key"},
		{"api key upper case", `{"api": {"KEY": "abc"}}`, goodAssets, goodOutput, "api.key"},
		{"api section not a mapping", `{"api": "abc"}`, goodAssets, goodOutput, "api.key"},
		{"assets upper case", goodAPI, `{"ASSETS": [{"symbol": "BTC"}]}`, goodOutput, "assets"},
		{"output path upper case", goodAPI, goodAssets, `{"OUTPUT_PATH": "out"}`, "output_path"},
		{"json null document", `null`, goodAssets, goodOutput, "api.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(
				mustLoad(t, "api.json", tt.api),
				mustLoad(t, "asset.json", tt.assets),
				mustLoad(t, "output.json", tt.output),
			)
			if err == nil {
				t.Fatal("Resolve() expected error, got nil")
			}
			if !errors.Is(err, ErrShape) {
				t.Errorf("Resolve() error = %v, want ErrShape", err)
			}

			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("Resolve() error = %T, want *ShapeError", err)
			}
			if se.Key != tt.wantKey {
				t.Errorf("ShapeError.Key = %q, want %q", se.Key, tt.wantKey)
			}
		})
	}
}

func TestLoadAll_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	apiPath := filepath.Join(dir, "api.json")
	if err := os.WriteFile(apiPath, []byte(`{"api": {"key": "abc"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	outputPath := filepath.Join(dir, "output.json")
	if err := os.WriteFile(outputPath, []byte(`not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Settings{
		APIConfig:    apiPath,
		AssetConfig:  filepath.Join(dir, "asset.json"),
		OutputConfig: outputPath,
	}

	_, err := LoadAll(s)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadAll() error = %v, want ErrNotFound for the asset config", err)
	}
	if errors.Is(err, ErrParse) {
		t.Errorf("LoadAll() error = %v, output config should not have been loaded", err)
	}
}

func TestLoadAll_Success(t *testing.T) {
	s := &Settings{
		APIConfig:    writeFile(t, "api.json", `{"api": {"key": "abc"}}`),
		AssetConfig:  writeFile(t, "asset.json", `{"assets": [{"symbol": "BTC"}]}`),
		OutputConfig: writeFile(t, "output.json", `{"output_path": "out"}`),
	}

	cfg, err := LoadAll(s)
	if err != nil {
		t.Fatalf("LoadAll() returned unexpected error: %v", err)
	}
	if len(cfg.Assets) != 1 || cfg.Assets[0].Symbol != "BTC" {
		t.Errorf("Assets = %v, want [BTC]", cfg.Assets)
	}
}

func TestCredential_Redacted(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"abc", "****"},
		{"12345678", "****"},
		{"supersecretkey42", "****ey42"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := Credential(tt.key)
			if got := fmt.Sprintf("%v", c); got != tt.want {
				t.Errorf("fmt %%v = %q, want %q", got, tt.want)
			}
			if got := c.LogValue().String(); got != tt.want {
				t.Errorf("LogValue() = %q, want %q", got, tt.want)
			}
			if c.Reveal() != tt.key {
				t.Errorf("Reveal() = %q, want %q", c.Reveal(), tt.key)
			}
		})
	}
}

func TestCredential_NotLoggedInFull(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("resolved", "api_key", Credential("supersecretkey42"))

	if strings.Contains(buf.String(), "supersecret") {
		t.Errorf("log output leaked the credential: %s", buf.String())
	}
}
