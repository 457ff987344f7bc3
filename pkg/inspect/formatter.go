package inspect

import (
	"fmt"
	"strings"
)

// Formatter renders inspection snapshots as indented text.
type Formatter struct {
	// ShowAccess includes the access mode next to each attribute
	ShowAccess bool

	// ShowRefCounts includes the live reference count next to each node
	ShowRefCounts bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowAccess:  true,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatTree renders the whole registry snapshot.
func (f *Formatter) FormatTree(tree *TreeInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "registry %s (%s)\n", tree.Name, shortID(tree.RegistryID))
	for _, root := range tree.Roots {
		f.formatNode(&b, root, 1)
	}
	return b.String()
}

// FormatNode renders one node subtree.
func (f *Formatter) FormatNode(info NodeInfo) string {
	var b strings.Builder
	f.formatNode(&b, info, 0)
	return b.String()
}

func (f *Formatter) formatNode(b *strings.Builder, info NodeInfo, depth int) {
	line := fmt.Sprintf("%s/ [%s]", info.Name, info.Type)
	if f.ShowRefCounts {
		line += fmt.Sprintf(" refs=%d", info.RefCount)
	}
	b.WriteString(f.Indent(depth, line))
	b.WriteByte('\n')

	for _, attr := range info.Attributes {
		b.WriteString(f.Indent(depth+1, f.formatAttribute(attr)))
		b.WriteByte('\n')
	}
	for _, child := range info.Children {
		f.formatNode(b, child, depth+1)
	}
}

func (f *Formatter) formatAttribute(attr AttributeInfo) string {
	var value string
	switch {
	case attr.Err != "":
		value = fmt.Sprintf("<error: %s>", attr.Err)
	case !strings.Contains(attr.Access, "r"):
		value = "<write-only>"
	default:
		value = fmt.Sprintf("%q", attr.Value)
	}

	if f.ShowAccess {
		return fmt.Sprintf("%s (%s) = %s", attr.Name, attr.Access, value)
	}
	return fmt.Sprintf("%s = %s", attr.Name, value)
}

// shortID abbreviates a registry instance ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
