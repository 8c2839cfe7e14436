// Package codec provides encode/decode interfaces for scene interchange
// documents.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Codec encodes and decodes interchange documents.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used in configuration and flags.
	Name() string
	// Ext returns the file extension written for this codec.
	Ext() string
}

// Default is the codec used when nothing else is configured.
var Default Codec = YAML{}

var registry = []Codec{YAML{}, JSON{}, MsgPack{}}

// Names lists the accepted codec names.
func Names() []string {
	names := make([]string, len(registry))
	for i, c := range registry {
		names[i] = c.Name()
	}
	return names
}

// ForName returns the codec called name. An empty name selects Default.
func ForName(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	for _, c := range registry {
		if strings.EqualFold(c.Name(), name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
}

// ForPath picks a codec from the file extension of path.
func ForPath(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML{}, nil
	case ".json":
		return JSON{}, nil
	case ".msgpack", ".mpk":
		return MsgPack{}, nil
	default:
		return nil, fmt.Errorf("cannot infer format from %q", path)
	}
}
