package toast

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTemplate reads a YAML template file. Unknown keys are rejected.
func LoadTemplate(path string) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("reading template %s: %w", path, err)
	}
	return DecodeTemplate(data)
}

// DecodeTemplate parses YAML template data.
func DecodeTemplate(data []byte) (Template, error) {
	var t Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return Template{}, malformed(0, "empty template", nil)
		}
		return Template{}, malformed(yamlLine(err), "", err)
	}
	return t, nil
}

// LoadFile builds content from a markup (.xml) or template (.yaml, .yml) file.
func LoadFile(path string) (*Content, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err := LoadTemplate(path)
		if err != nil {
			return nil, err
		}
		return Build(t)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading toast file %s: %w", path, err)
		}
		return Parse(string(data))
	}
}

// yamlLine extracts the first line number from a yaml error message.
func yamlLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		_, _ = fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}
