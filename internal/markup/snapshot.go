package markup

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the serializable form of a subtree as stored in
// definitions.raw_content: {"tag","text","attributes","children"}.
type Snapshot struct {
	Tag        string     `json:"tag"`
	Text       string     `json:"text"`
	Attributes Attributes `json:"attributes"`
	Children   []Snapshot `json:"children"`
}

// Serialize converts n into its snapshot. Attributes and children are
// never nil so empty ones encode as {} and [].
func Serialize(n Node) Snapshot {
	attrs := make(Attributes, len(n.attrs))
	copy(attrs, n.attrs)
	s := Snapshot{
		Tag:        n.tag,
		Text:       n.text,
		Attributes: attrs,
		Children:   make([]Snapshot, 0, len(n.children)),
	}
	for _, c := range n.children {
		s.Children = append(s.Children, Serialize(c))
	}
	return s
}

// Attributes is an ordered attribute list that encodes as a JSON object,
// keeping source order of the keys.
type Attributes []Attr

// MarshalJSON implements json.Marshaler.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(attr.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Key order is preserved.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}

	out := Attributes{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attributes: value of %q: %w", key, err)
		}
		out = append(out, Attr{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
