package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

// Supported file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a configuration file from disk on top of Default,
// validates it, and returns the resulting model. The format follows the
// file extension.
func ParseConfig(path string) (*Config, error) {
	format, err := formatForPath(path)
	if err != nil {
		return nil, floatkiterrors.NewParseError(path, 0, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, floatkiterrors.NewParseError(path, 0, err)
	}

	return parse(path, data, format)
}

// ParseBytes decodes an in-memory document of the given format.
func ParseBytes(data []byte, format string) (*Config, error) {
	return parse("<input>", data, strings.ToLower(format))
}

func parse(path string, data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and means "all defaults".
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, floatkiterrors.NewParseError(path, extractLine(err), err)
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			var perr toml.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.Position.Line
			}
			return nil, floatkiterrors.NewParseError(path, line, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, floatkiterrors.NewParseError(path, 0, fmt.Errorf("unknown key %q", undecoded[0].String()))
		}
	default:
		return nil, floatkiterrors.NewParseError(path, 0, fmt.Errorf("unsupported config format %q", format))
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
