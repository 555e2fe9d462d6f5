package object

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// Store maps declared variable names to their current value.
//
// A name enters the store only through Declare; Assign refuses names that
// were never declared. The store is not safe for concurrent use.
type Store struct {
	values map[string]Number
}

func NewStore() *Store {
	return &Store{values: make(map[string]Number)}
}

// Get retrieves the value bound to name.
func (s *Store) Get(name string) (Number, bool) {
	v, ok := s.values[name]
	return v, ok
}

func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Declare binds name, creating it if needed.
func (s *Store) Declare(name string, v Number) {
	s.values[name] = v
}

// Assign rebinds an existing name.
func (s *Store) Assign(name string, v Number) bool {
	if _, ok := s.values[name]; !ok {
		return false
	}

	s.values[name] = v
	return true
}

func (s *Store) Len() int {
	return len(s.values)
}

// Reset drops every binding.
func (s *Store) Reset() {
	s.values = make(map[string]Number)
}

// Keys returns the declared names in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Snapshot returns a copy of the current bindings.
func (s *Store) Snapshot() map[string]Number {
	out := make(map[string]Number, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}

	return out
}

// String renders the bindings as {a: 1, b: 2.5}, sorted by name.
func (s *Store) String() string {
	var b strings.Builder

	b.WriteString("{")
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(s.values[k].Inspect())
	}
	b.WriteString("}")

	return b.String()
}

// Digest is a BLAKE3 hash of the sorted bindings. Two stores with the same
// names bound to the same typed values have the same digest.
func (s *Store) Digest() string {
	h := blake3.New()
	for _, k := range s.Keys() {
		v := s.values[k]
		h.WriteString(fmt.Sprintf("%s=%s:%s\n", k, v.Type(), v.Inspect()))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// MarshalYAML emits a mapping sorted by name, keeping integers and floats apart.
func (s *Store) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, k := range s.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			yamlScalar(s.values[k]),
		)
	}

	return node, nil
}

func yamlScalar(v Number) *yaml.Node {
	f, ok := v.(*Float)
	if !ok {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Inspect()}
	}

	value := f.Inspect()
	switch {
	case math.IsInf(f.Value, 1):
		value = ".inf"
	case math.IsInf(f.Value, -1):
		value = "-.inf"
	case math.IsNaN(f.Value):
		value = ".nan"
	}

	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: value}
}
