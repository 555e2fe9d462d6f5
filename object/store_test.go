package object

import (
	"math"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{&Integer{Value: 14}, "14"},
		{&Integer{Value: -3}, "-3"},
		{&Float{Value: 2}, "2.0"},
		{&Float{Value: 3.5}, "3.5"},
		{&Float{Value: 1e21}, "1e+21"},
		{&Float{Value: 1000000}, "1000000.0"},
		{&Float{Value: 2469135}, "2469135.0"},
		{&Float{Value: 123456789.125}, "123456789.125"},
		{&Float{Value: 1e15}, "1000000000000000.0"},
		{&Float{Value: 1e16}, "1e+16"},
		{&Float{Value: 1.5e16}, "1.5e+16"},
		{&Float{Value: 0.0001}, "0.0001"},
		{&Float{Value: 0.00001}, "1e-05"},
		{&Float{Value: 0}, "0.0"},
		{&Float{Value: -0.5}, "-0.5"},
		{&Float{Value: math.Inf(1)}, "+Inf"},
		{&Float{Value: math.Inf(-1)}, "-Inf"},
		{&Float{Value: math.NaN()}, "NaN"},
		{&Name{Value: "x"}, "x"},
		{UNIT, "None"},
	}

	for _, tt := range tests {
		if got := tt.value.Inspect(); got != tt.expected {
			t.Errorf("%T: expected %q, got %q", tt.value, tt.expected, got)
		}
	}
}

func TestStoreDeclareAndAssign(t *testing.T) {
	s := NewStore()

	if s.Assign("x", &Integer{Value: 1}) {
		t.Fatalf("assign to an undeclared name must fail")
	}
	if s.Len() != 0 {
		t.Fatalf("failed assign must not insert, store=%s", s)
	}

	s.Declare("x", &Integer{Value: 1})
	if !s.Assign("x", &Float{Value: 2.5}) {
		t.Fatalf("assign to a declared name must succeed")
	}

	v, ok := s.Get("x")
	if !ok || v.Inspect() != "2.5" {
		t.Fatalf("expected x=2.5, got %v %v", v, ok)
	}

	if _, ok := s.Get("y"); ok {
		t.Fatalf("y was never declared")
	}
}

func TestStoreString(t *testing.T) {
	s := NewStore()
	if s.String() != "{}" {
		t.Fatalf("expected {}, got %s", s)
	}

	s.Declare("b", &Float{Value: 2})
	s.Declare("a", &Integer{Value: 14})

	if got := s.String(); got != "{a: 14, b: 2.0}" {
		t.Fatalf("unexpected %q", got)
	}
	if !reflect.DeepEqual(s.Keys(), []string{"a", "b"}) {
		t.Fatalf("unexpected keys %v", s.Keys())
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Declare("a", &Integer{Value: 1})

	snap := s.Snapshot()
	delete(snap, "a")

	if !s.Has("a") {
		t.Fatalf("changing a snapshot must not touch the store")
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.Declare("a", &Integer{Value: 1})
	s.Reset()

	if s.Len() != 0 || s.Has("a") {
		t.Fatalf("expected an empty store after reset, got %s", s)
	}
}

func TestStoreDigest(t *testing.T) {
	a := NewStore()
	b := NewStore()

	if a.Digest() != b.Digest() {
		t.Fatalf("empty stores must share a digest")
	}

	a.Declare("x", &Integer{Value: 2})
	a.Declare("y", &Integer{Value: 3})
	b.Declare("y", &Integer{Value: 3})
	b.Declare("x", &Integer{Value: 2})

	if a.Digest() != b.Digest() {
		t.Fatalf("insertion order must not matter")
	}

	b.Assign("x", &Float{Value: 2})
	if a.Digest() == b.Digest() {
		t.Fatalf("2 and 2.0 must not share a digest")
	}

	if len(a.Digest()) != 64 {
		t.Fatalf("expected a 32 byte hex digest, got %q", a.Digest())
	}
}

func TestStoreMarshalYAML(t *testing.T) {
	s := NewStore()
	s.Declare("z", &Float{Value: 2})
	s.Declare("a", &Integer{Value: 14})
	s.Declare("m", &Float{Value: math.Inf(-1)})

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := "a: 14\nm: -.inf\nz: 2.0\n"
	if string(out) != want {
		t.Fatalf("expected %q, got %q", want, string(out))
	}

	var back map[string]interface{}
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back["a"].(int); !ok {
		t.Fatalf("a should read back as an int, got %T", back["a"])
	}
	if _, ok := back["z"].(float64); !ok {
		t.Fatalf("z should read back as a float, got %T", back["z"])
	}
}
