package registry

import (
	"errors"
	"testing"
)

func TestNewNodeTypeValid(t *testing.T) {
	typ, err := NewNodeType("info", []Attribute{
		{Name: "num_devices", Access: AccessReadOnly, Show: func(*Node) ([]byte, error) { return []byte("0"), nil }},
		{Name: "version", Access: AccessReadOnly, Show: func(*Node) ([]byte, error) { return []byte("1"), nil }},
	}, nil)
	if err != nil {
		t.Fatalf("NewNodeType failed: %v", err)
	}

	if typ.Name() != "info" {
		t.Errorf("expected name info, got %s", typ.Name())
	}

	names := typ.AttributeNames()
	if len(names) != 2 || names[0] != "num_devices" || names[1] != "version" {
		t.Errorf("attribute order not preserved: %v", names)
	}

	attr, ok := typ.Attribute("version")
	if !ok {
		t.Fatal("attribute version not found")
	}
	if !attr.Access.CanRead() || attr.Access.CanWrite() {
		t.Errorf("unexpected access %s", attr.Access)
	}

	if _, ok := typ.Attribute("missing"); ok {
		t.Error("expected lookup miss for unknown attribute")
	}
}

func TestNewNodeTypeDuplicateAttribute(t *testing.T) {
	show := func(*Node) ([]byte, error) { return nil, nil }

	_, err := NewNodeType("bad", []Attribute{
		{Name: "x", Access: AccessReadOnly, Show: show},
		{Name: "x", Access: AccessReadOnly, Show: show},
	}, nil)
	if !errors.Is(err, ErrDuplicateAttribute) {
		t.Errorf("expected ErrDuplicateAttribute, got %v", err)
	}
}

func TestNewNodeTypeWritableWithoutStore(t *testing.T) {
	_, err := NewNodeType("bad", []Attribute{
		{Name: "x", Access: AccessReadWrite, Show: func(*Node) ([]byte, error) { return nil, nil }},
	}, nil)
	if !errors.Is(err, ErrMissingStore) {
		t.Errorf("expected ErrMissingStore, got %v", err)
	}
}

func TestNewNodeTypeWriteOnlyLegal(t *testing.T) {
	// A write-only attribute (no show) is legal, if unusual.
	typ, err := NewNodeType("ctl", []Attribute{
		{Name: "trigger", Access: AccessWriteOnly, Store: func(*Node, []byte) error { return nil }},
	}, nil)
	if err != nil {
		t.Fatalf("NewNodeType failed: %v", err)
	}

	attr, _ := typ.Attribute("trigger")
	if attr.Show != nil {
		t.Error("expected nil show for write-only attribute")
	}
	if attr.Access.String() != "-w" {
		t.Errorf("expected access -w, got %s", attr.Access)
	}
}

func TestNewNodeTypeInvalidNames(t *testing.T) {
	if _, err := NewNodeType("", nil, nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for empty type name, got %v", err)
	}

	_, err := NewNodeType("t", []Attribute{{Name: "", Access: AccessReadOnly}}, nil)
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName for empty attribute name, got %v", err)
	}
}

func TestNodeTypeAttributesCopy(t *testing.T) {
	typ := MustNodeType("t", []Attribute{
		{Name: "a", Access: AccessReadOnly},
	}, nil)

	attrs := typ.Attributes()
	attrs[0].Name = "mutated"

	if names := typ.AttributeNames(); names[0] != "a" {
		t.Errorf("type mutated through Attributes() copy: %v", names)
	}
}

func TestNodeTypeAttributeLookupCopy(t *testing.T) {
	typ := MustNodeType("t", []Attribute{
		{Name: "a", Access: AccessReadOnly},
	}, nil)

	attr, ok := typ.Attribute("a")
	if !ok {
		t.Fatal("attribute a not found")
	}
	attr.Name = "mutated"
	attr.Access = AccessReadWrite

	again, _ := typ.Attribute("a")
	if again.Name != "a" || again.Access != AccessReadOnly {
		t.Errorf("type mutated through Attribute() result: %+v", again)
	}
}

func TestMustNodeTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic from malformed declaration")
		}
	}()
	MustNodeType("bad", []Attribute{
		{Name: "x", Access: AccessReadWrite},
	}, nil)
}
