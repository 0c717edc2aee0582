// Package manifest reads and rewrites a plugin's package.json while keeping
// its key order.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/conn-castle/capmigrate/internal/messages"
)

// Dependency sections of a package manifest.
const (
	SectionDependencies     = "dependencies"
	SectionDevDependencies  = "devDependencies"
	SectionPeerDependencies = "peerDependencies"
)

// Platforms with a capacitor.<platform>.src entry.
const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

var errNotObject = errors.New(messages.ManifestNotObject)

type object = orderedmap.OrderedMap[string, json.RawMessage]

// Document is a parsed package manifest. Top-level keys keep their order and
// values not touched by a setter are written back as they were read.
type Document struct {
	root *object
}

// Parse decodes a manifest. The root must be a JSON object.
func Parse(data []byte) (*Document, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

func parseObject(data []byte) (*object, error) {
	if _, dataType, _, err := jsonparser.Get(data); err != nil || dataType != jsonparser.Object {
		if err != nil {
			return nil, err
		}
		return nil, errNotObject
	}
	m := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Marshal encodes the document with two-space indentation and a trailing
// newline. HTML characters are not escaped.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	if err := writeObject(&compact, d.root); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeObject(buf *bytes.Buffer, m *object) error {
	buf.WriteByte('{')
	first := true
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := encodeString(pair.Key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(buf, pair.Value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeString(s string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

// Version returns the top-level version string.
func (d *Document) Version() (string, bool) {
	raw, ok := d.root.Get("version")
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// SetVersion replaces the top-level version string.
func (d *Document) SetVersion(version string) error {
	encoded, err := encodeString(version)
	if err != nil {
		return err
	}
	d.root.Set("version", encoded)
	return nil
}

// Dependency returns the constraint for name in section. ok is false when
// the section or the entry is missing or the entry is not a string.
func (d *Document) Dependency(section string, name string) (string, bool) {
	raw, ok := d.root.Get(section)
	if !ok {
		return "", false
	}
	value, err := jsonparser.GetString(raw, name)
	if err != nil {
		return "", false
	}
	return value, true
}

// HasDependency reports whether section lists name with a non-empty constraint.
func (d *Document) HasDependency(section string, name string) bool {
	value, ok := d.Dependency(section, name)
	return ok && value != ""
}

// SetDependency sets name in section to version, appending the entry (and
// the section) when missing. Other entries keep their order. It reports
// whether the stored value changed.
func (d *Document) SetDependency(section string, name string, version string) (bool, error) {
	if current, ok := d.Dependency(section, name); ok && current == version {
		return false, nil
	}
	sec := orderedmap.New[string, json.RawMessage]()
	if raw, ok := d.root.Get(section); ok {
		parsed, err := parseObject(raw)
		if err != nil {
			return false, err
		}
		sec = parsed
	}
	encoded, err := encodeString(version)
	if err != nil {
		return false, err
	}
	sec.Set(name, encoded)

	var buf bytes.Buffer
	if err := writeObject(&buf, sec); err != nil {
		return false, err
	}
	d.root.Set(section, buf.Bytes())
	return true, nil
}

// NativeSrc returns capacitor.<platform>.src. ok is false when it is
// missing or empty.
func (d *Document) NativeSrc(platform string) (string, bool) {
	raw, ok := d.root.Get("capacitor")
	if !ok {
		return "", false
	}
	src, err := jsonparser.GetString(raw, platform, "src")
	if err != nil || strings.TrimSpace(src) == "" {
		return "", false
	}
	return src, true
}

// Files returns the string entries of the top-level files array.
func (d *Document) Files() []string {
	raw, ok := d.root.Get("files")
	if !ok {
		return nil
	}
	var files []string
	_, _ = jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if err != nil || dataType != jsonparser.String {
			return
		}
		s, parseErr := jsonparser.ParseString(value)
		if parseErr != nil {
			return
		}
		files = append(files, s)
	})
	return files
}
