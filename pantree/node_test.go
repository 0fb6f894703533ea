package pantree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-panw/pantree"
)

const configRoot = "/config/devices/entry[@name='localhost.localdomain']"

func TestAdd(t *testing.T) {
	t.Run("sets parent and returns child for chaining", func(t *testing.T) {
		fw := pantree.NewFirewall(nil)
		vsys := fw.Add(pantree.NewVsys("vsys1"))

		assert.Same(t, fw, vsys.Parent())
		require.Len(t, fw.Children(), 1)
		assert.Same(t, vsys, fw.Children()[0])
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		vsys.Add(pantree.NewAddressObject("a", "10.0.0.1"))
		vsys.Add(pantree.NewAddressObject("b", "10.0.0.2"))
		vsys.Add(pantree.NewTag("a"))

		children := vsys.Children()
		require.Len(t, children, 3)
		assert.Equal(t, "a", children[0].Name())
		assert.Equal(t, "b", children[1].Name())
		assert.Equal(t, pantree.KindTag, children[2].Kind())
	})

	t.Run("panics on already attached child", func(t *testing.T) {
		v1 := pantree.NewVsys("vsys1")
		v2 := pantree.NewVsys("vsys2")
		addr := pantree.NewAddressObject("web-1", "10.0.0.1")
		v1.Add(addr)

		assert.Panics(t, func() { v2.Add(addr) })
	})

	t.Run("panics on cycle", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		assert.Panics(t, func() { vsys.Add(vsys) })
	})

	t.Run("reattach after detach", func(t *testing.T) {
		v1 := pantree.NewVsys("vsys1")
		v2 := pantree.NewVsys("vsys2")
		addr := pantree.NewAddressObject("web-1", "10.0.0.1")

		v1.Add(addr)
		addr.Detach()
		v2.Add(addr)

		assert.Same(t, v2, addr.Parent())
		assert.Empty(t, v1.Children())
	})
}

func TestRemoveByName(t *testing.T) {
	t.Run("removes first match in insertion order", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		addr := pantree.NewAddressObject("web", "10.0.0.1")
		tag := pantree.NewTag("web")
		vsys.Add(addr)
		vsys.Add(tag)

		removed := vsys.RemoveByName("web", pantree.KindAny)
		require.NotNil(t, removed)
		assert.Same(t, pantree.Node(addr), removed)
		assert.Nil(t, removed.Parent())
		require.Len(t, vsys.Children(), 1)
		assert.Same(t, pantree.Node(tag), vsys.Children()[0])
	})

	t.Run("kind filter skips other kinds", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		addr := pantree.NewAddressObject("web", "10.0.0.1")
		tag := pantree.NewTag("web")
		vsys.Add(addr)
		vsys.Add(tag)

		removed := vsys.RemoveByName("web", pantree.KindTag)
		require.NotNil(t, removed)
		assert.Same(t, pantree.Node(tag), removed)
		assert.Same(t, pantree.Node(addr), vsys.Children()[0])
	})

	t.Run("no match returns nil and is idempotent", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		vsys.Add(pantree.NewAddressObject("web", "10.0.0.1"))

		assert.Nil(t, vsys.RemoveByName("absent", pantree.KindAny))
		assert.NotNil(t, vsys.RemoveByName("web", pantree.KindAny))
		assert.Nil(t, vsys.RemoveByName("web", pantree.KindAny))
	})
}

func TestDetach(t *testing.T) {
	vsys := pantree.NewVsys("vsys1")
	addr := pantree.NewAddressObject("web", "10.0.0.1")
	vsys.Add(addr)

	addr.Detach()
	assert.Nil(t, addr.Parent())
	assert.Empty(t, vsys.Children())

	// Detaching a detached node is a no-op.
	addr.Detach()
	assert.Nil(t, addr.Parent())
}

func TestFind(t *testing.T) {
	vsys := pantree.NewVsys("vsys1")
	addr := pantree.NewAddressObject("web", "10.0.0.1")
	vsys.Add(addr)

	assert.Same(t, pantree.Node(addr), vsys.Find("web", pantree.KindAddressObject))
	assert.Nil(t, vsys.Find("web", pantree.KindTag))
	assert.Nil(t, vsys.Find("absent", pantree.KindAny))
	// Find does not detach.
	assert.Len(t, vsys.Children(), 1)
}

func TestXpath(t *testing.T) {
	t.Run("firewall root", func(t *testing.T) {
		fw := pantree.NewFirewall(nil)
		assert.Equal(t, configRoot, fw.Xpath())
	})

	t.Run("address under firewall vsys", func(t *testing.T) {
		fw := pantree.NewFirewall(nil)
		vsys := fw.Add(pantree.NewVsys("vsys1"))
		addr := vsys.(*pantree.Vsys).Add(pantree.NewAddressObject("web-1", "10.0.0.1"))

		assert.Equal(t, configRoot+"/vsys/entry[@name='vsys1']/address/entry[@name='web-1']", addr.Xpath())
	})

	t.Run("same object under panorama device group", func(t *testing.T) {
		pano := pantree.NewPanorama(nil)
		dg := pantree.NewDeviceGroup("branch")
		pano.Add(dg)
		addr := pantree.NewAddressObject("web-1", "10.0.0.1")
		dg.Add(addr)

		assert.Equal(t, configRoot+"/device-group/entry[@name='branch']/address/entry[@name='web-1']", addr.Xpath())
	})

	t.Run("security rule nests its rulebase containers", func(t *testing.T) {
		vsys := pantree.NewVsys("vsys1")
		rule := pantree.NewSecurityRule("allow-web")
		vsys.Add(rule)

		assert.Equal(t, "/vsys/entry[@name='vsys1']/rulebase/security/rules/entry[@name='allow-web']", rule.Xpath())
	})

	t.Run("detached node composes from empty prefix", func(t *testing.T) {
		addr := pantree.NewAddressObject("web-1", "10.0.0.1")
		assert.Equal(t, "/address/entry[@name='web-1']", addr.Xpath())
	})
}

func TestParentXpath(t *testing.T) {
	fw := pantree.NewFirewall(nil)
	vsys := pantree.NewVsys("vsys1")
	fw.Add(vsys)
	addr := pantree.NewAddressObject("web-1", "10.0.0.1")
	vsys.Add(addr)

	assert.Equal(t, configRoot+"/vsys/entry[@name='vsys1']/address", pantree.ParentXpath(addr))

	rule := pantree.NewSecurityRule("allow-web")
	vsys.Add(rule)
	assert.Equal(t, configRoot+"/vsys/entry[@name='vsys1']/rulebase/security/rules", pantree.ParentXpath(rule))
}
