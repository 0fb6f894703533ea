package pantree

import (
	"context"

	"github.com/tphakala/go-panw"
)

// DeviceOf walks parent references upward until it reaches a device root.
// A detached subtree has no device and yields DeviceNotSetError.
func DeviceOf(n Node) (Device, error) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if dev, ok := cur.(Device); ok {
			return dev, nil
		}
	}
	return nil, &panw.DeviceNotSetError{Node: describeNode(n)}
}

// Device returns the device root this node is attached to.
func (n *ConfigNode) Device() (Device, error) {
	return DeviceOf(n.self)
}

// Apply pushes the node's full serialized form with the XML API edit
// action, replacing whatever exists at the node's xpath.
func (n *ConfigNode) Apply(ctx context.Context) error {
	dev, err := n.Device()
	if err != nil {
		return err
	}
	_, err = dev.APIClient().ConfigEdit(ctx, n.self.Xpath(), n.self.Element())
	return err
}

// Create pushes the node with the XML API set action. Set targets the
// container holding the entry, so the request addresses the parent xpath
// (the node's xpath with the last segment stripped). Unlike Apply, set
// merges with existing configuration rather than replacing it.
func (n *ConfigNode) Create(ctx context.Context) error {
	dev, err := n.Device()
	if err != nil {
		return err
	}
	_, err = dev.APIClient().ConfigSet(ctx, ParentXpath(n.self), n.self.Element())
	return err
}

// Delete removes the node's configuration from the device, then detaches
// the node from its parent. The node stays attached when the API call
// fails.
func (n *ConfigNode) Delete(ctx context.Context) error {
	dev, err := n.Device()
	if err != nil {
		return err
	}
	if _, err := dev.APIClient().ConfigDelete(ctx, n.self.Xpath()); err != nil {
		return err
	}
	n.Detach()
	return nil
}

// Refresh fetches the entry XML currently on the device at the node's
// xpath. The Parse helpers in this package decode it into typed nodes.
func (n *ConfigNode) Refresh(ctx context.Context) ([]byte, error) {
	dev, err := n.Device()
	if err != nil {
		return nil, err
	}
	resp, err := dev.APIClient().ConfigGet(ctx, n.self.Xpath())
	if err != nil {
		return nil, err
	}
	return resp.Result.Inner, nil
}
