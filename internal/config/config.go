// Package config loads the three configuration files that drive a batch run and
// resolves them into the values the coordinator needs.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Keys required in each configuration file. Keys match case-sensitively and a
// dotted key is a path through nested mappings.
const (
	KeyAPIKey     = "api.key"
	KeyAssets     = "assets"
	KeyOutputPath = "output_path"
	KeySymbol     = "symbol"
)

// Document is one parsed configuration file.
type Document struct {
	Path string
	data map[string]any
}

// Lookup walks the dot separated key through nested mappings. It reports
// whether every segment was present.
func (d *Document) Lookup(key string) (any, bool) {
	var cur any = d.data
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Credential is the API key shared by every fetch. Its String and LogValue
// forms are redacted; use Reveal to pass it to the fetch executable.
type Credential string

// Reveal returns the full secret.
func (c Credential) Reveal() string {
	return string(c)
}

// String implements fmt.Stringer with a redacted value
func (c Credential) String() string {
	if len(c) <= 8 {
		return "****"
	}
	return "****" + string(c[len(c)-4:])
}

// LogValue implements slog.LogValuer
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Asset is one entry of the asset list. HasSymbol distinguishes a missing
// symbol key from an empty symbol value.
type Asset struct {
	Symbol    string
	HasSymbol bool
}

// Config holds the resolved values for one run. It is built once at startup
// and never reloaded.
type Config struct {
	APIKey     Credential
	Assets     []Asset
	OutputPath string
}

// Load reads and parses the configuration file at path. The format follows the
// file extension and defaults to JSON.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Cause: err}
	}

	data, err := decode(path, raw)
	if err != nil {
		return nil, err
	}

	return &Document{Path: path, data: data}, nil
}

func decode(path string, raw []byte) (map[string]any, error) {
	data := map[string]any{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &data); err != nil {
			perr := &ParseError{Path: path, Cause: err}
			var decErr *toml.DecodeError
			if errors.As(err, &decErr) {
				perr.Line, perr.Column = decErr.Position()
			}
			return nil, perr
		}
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, jsonParseError(path, raw, err)
		}
	}

	return data, nil
}

// jsonParseError locates a JSON decoding failure by line and column
func jsonParseError(path string, raw []byte, err error) *ParseError {
	perr := &ParseError{Path: path, Cause: err}

	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return perr
	}

	offset = min(max(offset, 0), int64(len(raw)))
	prefix := raw[:offset]
	perr.Offset = offset
	perr.Line = bytes.Count(prefix, []byte("\n")) + 1
	perr.Column = len(prefix) - (bytes.LastIndexByte(prefix, '\n') + 1)
	return perr
}

// Resolve extracts the credential, the asset list and the output directory from
// the three loaded documents.
func Resolve(apiDoc, assetDoc, outputDoc *Document) (*Config, error) {
	key, err := requireString(apiDoc, KeyAPIKey)
	if err != nil {
		return nil, err
	}

	assets, err := resolveAssets(assetDoc)
	if err != nil {
		return nil, err
	}

	outputPath, err := requireString(outputDoc, KeyOutputPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		APIKey:     Credential(key),
		Assets:     assets,
		OutputPath: outputPath,
	}, nil
}

func requireString(doc *Document, key string) (string, error) {
	value, present := doc.Lookup(key)
	if !present {
		return "", &ShapeError{Path: doc.Path, Key: key, Reason: "is missing"}
	}
	s, ok := value.(string)
	if !ok {
		return "", &ShapeError{Path: doc.Path, Key: key, Reason: "must be a string"}
	}
	if s == "" {
		return "", &ShapeError{Path: doc.Path, Key: key, Reason: "must not be empty"}
	}
	return s, nil
}

func resolveAssets(doc *Document) ([]Asset, error) {
	value, present := doc.Lookup(KeyAssets)
	if !present {
		return nil, &ShapeError{Path: doc.Path, Key: KeyAssets, Reason: "is missing"}
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, &ShapeError{Path: doc.Path, Key: KeyAssets, Reason: "must be a sequence"}
	}

	assets := make([]Asset, 0, len(raw))
	for i, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, &ShapeError{
				Path:   doc.Path,
				Key:    fmt.Sprintf("%s[%d]", KeyAssets, i),
				Reason: "must be a mapping",
			}
		}

		value, present := fields[KeySymbol]
		if !present {
			assets = append(assets, Asset{})
			continue
		}
		symbol, ok := value.(string)
		if !ok {
			return nil, &ShapeError{
				Path:   doc.Path,
				Key:    fmt.Sprintf("%s[%d].%s", KeyAssets, i, KeySymbol),
				Reason: "must be a string",
			}
		}
		assets = append(assets, Asset{Symbol: symbol, HasSymbol: true})
	}

	return assets, nil
}

// LoadAll loads the three configuration files named in s and resolves them.
// The first failure is returned and nothing else is attempted.
func LoadAll(s *Settings) (*Config, error) {
	apiDoc, err := Load(s.APIConfig)
	if err != nil {
		return nil, err
	}
	assetDoc, err := Load(s.AssetConfig)
	if err != nil {
		return nil, err
	}
	outputDoc, err := Load(s.OutputConfig)
	if err != nil {
		return nil, err
	}

	return Resolve(apiDoc, assetDoc, outputDoc)
}
