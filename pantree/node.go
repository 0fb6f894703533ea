// Package pantree models the PAN-OS hierarchical configuration as an
// in-memory tree and translates tree mutations into xpath-addressed XML API
// calls.
//
// Nodes are created detached, attached with Add, and detached with
// RemoveByName or Detach. A node's xpath is derived from its ancestors, so
// the same object serializes to different device locations depending on
// where it is attached (a firewall vsys, a Panorama device group, ...).
package pantree

import (
	"fmt"
	"strings"
)

// Kind identifies a configuration node type. Kinds replace dynamic type
// resolution: every kind maps through the static schema table in
// version.go.
type Kind string

const (
	KindFirewall      Kind = "firewall"
	KindPanorama      Kind = "panorama"
	KindVsys          Kind = "vsys"
	KindDeviceGroup   Kind = "device-group"
	KindAddressObject Kind = "address"
	KindAddressGroup  Kind = "address-group"
	KindTag           Kind = "tag"
	KindSecurityRule  Kind = "security-rule"

	// KindAny matches every kind in RemoveByName filters.
	KindAny Kind = ""
)

// Node is one element of the configuration tree.
type Node interface {
	// Name returns the entry name; empty for singleton nodes.
	Name() string

	// Kind returns the node's configuration kind.
	Kind() Kind

	// Parent returns the owning node, nil when detached. Parent references
	// are for lookup only; ownership always flows downward.
	Parent() Node

	// Children returns the ordered child sequence.
	Children() []Node

	// Xpath returns the node's absolute location in the configuration
	// hierarchy, composed from every ancestor's contribution.
	Xpath() string

	// Element serializes the node to its XML fragment,
	// <entry name="...">...</entry> for named entries.
	Element() string

	base() *ConfigNode
}

// ConfigNode implements the tree mechanics shared by all node kinds.
// Concrete kinds embed it and call init from their constructors.
type ConfigNode struct {
	self     Node
	name     string
	kind     Kind
	parent   Node
	children []Node
}

// init wires the embedded base to its outer node. Every constructor in this
// package calls it; required for Add to set parent references to the
// concrete type rather than the embedded base.
func (n *ConfigNode) init(self Node, kind Kind, name string) {
	n.self = self
	n.kind = kind
	n.name = name
}

// Name returns the entry name; empty for singleton nodes.
func (n *ConfigNode) Name() string { return n.name }

// Kind returns the node's configuration kind.
func (n *ConfigNode) Kind() Kind { return n.kind }

// Parent returns the owning node, nil when detached.
func (n *ConfigNode) Parent() Node { return n.parent }

// Children returns the ordered child sequence.
func (n *ConfigNode) Children() []Node { return n.children }

func (n *ConfigNode) base() *ConfigNode { return n }

// Add attaches child to this node: the child's parent reference is set and
// the child is appended to the child sequence. The child is returned to
// enable chaining:
//
//	vsys := fw.Add(pantree.NewVsys("vsys1"))
//
// Add panics when the child is already attached, or when attaching it would
// create a cycle (the child is this node or one of its ancestors). Both are
// programmer errors: detach explicitly before reparenting.
func (n *ConfigNode) Add(child Node) Node {
	cb := child.base()
	if cb.parent != nil {
		panic(fmt.Sprintf("pantree: node %q is already attached; detach it first", describeNode(child)))
	}
	for anc := n.self; anc != nil; anc = anc.Parent() {
		if anc.base() == cb {
			panic(fmt.Sprintf("pantree: adding %q would create a cycle", describeNode(child)))
		}
	}

	cb.parent = n.self
	n.children = append(n.children, child)
	return child
}

// RemoveByName scans the direct children in insertion order and removes and
// returns the first child whose name matches and whose kind matches the
// filter (KindAny matches all). The removed child's parent reference is
// cleared. Returns nil when no child matches; calling again with the same
// arguments is then a no-op.
func (n *ConfigNode) RemoveByName(name string, kind Kind) Node {
	for i, child := range n.children {
		if child.Name() != name {
			continue
		}
		if kind != KindAny && child.Kind() != kind {
			continue
		}
		n.children = append(n.children[:i], n.children[i+1:]...)
		child.base().parent = nil
		return child
	}
	return nil
}

// Detach removes this node from its parent's child sequence and clears the
// parent reference. Detaching an already-detached node is a no-op.
func (n *ConfigNode) Detach() {
	if n.parent == nil {
		return
	}
	pb := n.parent.base()
	for i, child := range pb.children {
		if child.base() == n {
			pb.children = append(pb.children[:i], pb.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Find returns the first direct child matching name and kind filter without
// detaching it, or nil.
func (n *ConfigNode) Find(name string, kind Kind) Node {
	for _, child := range n.children {
		if child.Name() != name {
			continue
		}
		if kind != KindAny && child.Kind() != kind {
			continue
		}
		return child
	}
	return nil
}

// Xpath composes the node's location from its schema entry and its parent's
// xpath. Detached subtrees compose from an empty prefix; device roots
// override Xpath with their fixed root paths.
func (n *ConfigNode) Xpath() string {
	schema := schemaFor(n.kind)

	prefix := ""
	if n.parent != nil {
		prefix = n.parent.Xpath()
	}

	xp := prefix + "/" + schema.Container
	if schema.Named {
		xp += "/entry[@name='" + n.name + "']"
	}
	return xp
}

// ParentXpath returns the node's xpath with the final path segment
// stripped. The XML API set action targets the container holding an entry,
// not the entry itself, so Create addresses this path.
func ParentXpath(n Node) string {
	xp := n.Xpath()
	if i := strings.LastIndex(xp, "/"); i > 0 {
		return xp[:i]
	}
	return xp
}

// Element serializes the bare entry. Concrete kinds override this with
// their own fields.
func (n *ConfigNode) Element() string {
	if n.name == "" {
		return "<entry/>"
	}
	return "<entry name=\"" + xmlAttrEscape(n.name) + "\"/>"
}

func describeNode(n Node) string {
	if n.Name() != "" {
		return string(n.Kind()) + "/" + n.Name()
	}
	return string(n.Kind())
}
