package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/denorm"
	"github.com/syssam/denorm/view"
)

// Format is a serialization format for graphs and results.
type Format string

// Supported formats.
const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	MsgPack Format = "msgpack"
)

// ParseFormat parses a format name. "yml" and "mp" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mp":
		return MsgPack, nil
	default:
		return "", denorm.NewConfigError("Format", s, "unsupported format; use json, yaml or msgpack")
	}
}

// FormatFromPath picks the format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", denorm.NewConfigError("Format", path, "file has no extension")
	}
	return ParseFormat(ext)
}

// LoadFile reads the graph stored at path.
func LoadFile(path string) (denorm.Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, denorm.NewSourceError(path, "open", err)
	}
	g, err := decode(data, format)
	if err != nil {
		return nil, denorm.NewSourceError(path, "decode", err)
	}
	return g, nil
}

// Decode reads a graph in the given format from r. The document must be
// an object mapping collection names to collections.
func Decode(r io.Reader, format Format) (denorm.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, denorm.NewSourceError(string(format), "read", err)
	}
	g, err := decode(data, format)
	if err != nil {
		return nil, denorm.NewSourceError(string(format), "decode", err)
	}
	return g, nil
}

func decode(data []byte, format Format) (denorm.Graph, error) {
	var v any
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &v)
	case YAML:
		err = yaml.Unmarshal(data, &v)
	case MsgPack:
		err = msgpack.Unmarshal(data, &v)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	m, ok := normalize(v).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document is %T, want an object of collections", v)
	}
	return denorm.Graph(m), nil
}

// normalize rewrites maps with non-string keys, as produced by the YAML and
// MessagePack decoders, into map[string]any.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}

// Encode writes v in the given format. Lazy views are materialized first.
func Encode(w io.Writer, format Format, v any) error {
	v = view.Materialize(v)
	var (
		data []byte
		err  error
	)
	switch format {
	case JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
		data = buf.Bytes()
	case YAML:
		data, err = yaml.Marshal(v)
	case MsgPack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		err = enc.Encode(v)
		data = buf.Bytes()
	default:
		return denorm.NewConfigError("Format", format, "unsupported format")
	}
	if err != nil {
		return fmt.Errorf("denorm: encoding %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}
