package pantree

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// memberList is the PAN-OS <x><member>...</member></x> list form.
type memberList struct {
	Members []string `xml:"member"`
}

func members(values []string) *memberList {
	if len(values) == 0 {
		return nil
	}
	return &memberList{Members: values}
}

func marshalEntry(v any) string {
	data, err := xml.Marshal(v)
	if err != nil {
		// Entry mirrors are plain structs; marshal cannot fail on them.
		panic(fmt.Sprintf("pantree: marshaling entry: %v", err))
	}
	return string(data)
}

func xmlAttrEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Vsys is a virtual system container on a firewall.
type Vsys struct {
	ConfigNode

	DisplayName string
}

// NewVsys creates a detached vsys node, e.g. NewVsys("vsys1").
func NewVsys(name string) *Vsys {
	v := &Vsys{}
	v.init(v, KindVsys, name)
	return v
}

type vsysXML struct {
	XMLName     xml.Name `xml:"entry"`
	Name        string   `xml:"name,attr"`
	DisplayName string   `xml:"display-name,omitempty"`
}

// Element serializes the vsys entry without its children; object children
// are created at their own xpaths.
func (v *Vsys) Element() string {
	return marshalEntry(vsysXML{Name: v.Name(), DisplayName: v.DisplayName})
}

// DeviceGroup is a Panorama device group.
type DeviceGroup struct {
	ConfigNode

	Description string
}

// NewDeviceGroup creates a detached device group node.
func NewDeviceGroup(name string) *DeviceGroup {
	d := &DeviceGroup{}
	d.init(d, KindDeviceGroup, name)
	return d
}

type deviceGroupXML struct {
	XMLName     xml.Name `xml:"entry"`
	Name        string   `xml:"name,attr"`
	Description string   `xml:"description,omitempty"`
}

func (d *DeviceGroup) Element() string {
	return marshalEntry(deviceGroupXML{Name: d.Name(), Description: d.Description})
}

// AddressType selects the value form of an address object.
type AddressType string

const (
	IPNetmask AddressType = "ip-netmask"
	IPRange   AddressType = "ip-range"
	FQDN      AddressType = "fqdn"
)

// AddressObject is a named address (host, network, range or FQDN).
type AddressObject struct {
	ConfigNode

	Type        AddressType
	Value       string
	Description string
	Tags        []string
}

// NewAddressObject creates a detached address object. The zero Type is
// treated as ip-netmask, the PAN-OS default.
func NewAddressObject(name, value string) *AddressObject {
	a := &AddressObject{Type: IPNetmask, Value: value}
	a.init(a, KindAddressObject, name)
	return a
}

type addressXML struct {
	XMLName     xml.Name    `xml:"entry"`
	Name        string      `xml:"name,attr"`
	IPNetmask   string      `xml:"ip-netmask,omitempty"`
	IPRange     string      `xml:"ip-range,omitempty"`
	FQDN        string      `xml:"fqdn,omitempty"`
	Description string      `xml:"description,omitempty"`
	Tags        *memberList `xml:"tag,omitempty"`
}

func (a *AddressObject) Element() string {
	e := addressXML{
		Name:        a.Name(),
		Description: a.Description,
		Tags:        members(a.Tags),
	}
	switch a.Type {
	case IPRange:
		e.IPRange = a.Value
	case FQDN:
		e.FQDN = a.Value
	default:
		e.IPNetmask = a.Value
	}
	return marshalEntry(e)
}

// ParseAddressObject decodes a vendor <entry> fragment into a detached
// address object, inverting Element.
func ParseAddressObject(entry []byte) (*AddressObject, error) {
	var e addressXML
	if err := xml.Unmarshal(entry, &e); err != nil {
		return nil, fmt.Errorf("pantree: parsing address entry: %w", err)
	}

	a := NewAddressObject(e.Name, "")
	a.Description = e.Description
	if e.Tags != nil {
		a.Tags = e.Tags.Members
	}
	switch {
	case e.IPRange != "":
		a.Type, a.Value = IPRange, e.IPRange
	case e.FQDN != "":
		a.Type, a.Value = FQDN, e.FQDN
	default:
		a.Type, a.Value = IPNetmask, e.IPNetmask
	}
	return a, nil
}

// AddressGroup is a named group of address objects, static (member list) or
// dynamic (tag match expression).
type AddressGroup struct {
	ConfigNode

	StaticMembers []string
	DynamicMatch  string
	Description   string
	Tags          []string
}

// NewAddressGroup creates a detached static address group.
func NewAddressGroup(name string, staticMembers ...string) *AddressGroup {
	g := &AddressGroup{StaticMembers: staticMembers}
	g.init(g, KindAddressGroup, name)
	return g
}

type addressGroupXML struct {
	XMLName     xml.Name    `xml:"entry"`
	Name        string      `xml:"name,attr"`
	Static      *memberList `xml:"static,omitempty"`
	Dynamic     *struct {
		Filter string `xml:"filter"`
	} `xml:"dynamic,omitempty"`
	Description string      `xml:"description,omitempty"`
	Tags        *memberList `xml:"tag,omitempty"`
}

func (g *AddressGroup) Element() string {
	e := addressGroupXML{
		Name:        g.Name(),
		Static:      members(g.StaticMembers),
		Description: g.Description,
		Tags:        members(g.Tags),
	}
	if g.DynamicMatch != "" {
		e.Dynamic = &struct {
			Filter string `xml:"filter"`
		}{Filter: g.DynamicMatch}
	}
	return marshalEntry(e)
}

// ParseAddressGroup decodes a vendor <entry> fragment into a detached
// address group, inverting Element.
func ParseAddressGroup(entry []byte) (*AddressGroup, error) {
	var e addressGroupXML
	if err := xml.Unmarshal(entry, &e); err != nil {
		return nil, fmt.Errorf("pantree: parsing address-group entry: %w", err)
	}

	g := NewAddressGroup(e.Name)
	g.Description = e.Description
	if e.Static != nil {
		g.StaticMembers = e.Static.Members
	}
	if e.Dynamic != nil {
		g.DynamicMatch = e.Dynamic.Filter
	}
	if e.Tags != nil {
		g.Tags = e.Tags.Members
	}
	return g, nil
}

// Tag is an administrative tag with an optional color code ("color1"
// through "color16").
type Tag struct {
	ConfigNode

	Color    string
	Comments string
}

// NewTag creates a detached tag node.
func NewTag(name string) *Tag {
	t := &Tag{}
	t.init(t, KindTag, name)
	return t
}

type tagXML struct {
	XMLName  xml.Name `xml:"entry"`
	Name     string   `xml:"name,attr"`
	Color    string   `xml:"color,omitempty"`
	Comments string   `xml:"comments,omitempty"`
}

func (t *Tag) Element() string {
	return marshalEntry(tagXML{Name: t.Name(), Color: t.Color, Comments: t.Comments})
}

// ParseTag decodes a vendor <entry> fragment into a detached tag.
func ParseTag(entry []byte) (*Tag, error) {
	var e tagXML
	if err := xml.Unmarshal(entry, &e); err != nil {
		return nil, fmt.Errorf("pantree: parsing tag entry: %w", err)
	}
	t := NewTag(e.Name)
	t.Color = e.Color
	t.Comments = e.Comments
	return t, nil
}

// SecurityRule is a security policy rule. Empty list fields serialize as
// ["any"], matching how PAN-OS stores unconstrained match criteria.
type SecurityRule struct {
	ConfigNode

	From         []string
	To           []string
	Source       []string
	Destination  []string
	Applications []string
	Services     []string
	Action       string // allow, deny, drop
	Description  string
	Tags         []string
	Disabled     bool
	LogEnd       bool
}

// NewSecurityRule creates a detached security rule with action allow and
// log-at-end enabled, the device defaults.
func NewSecurityRule(name string) *SecurityRule {
	r := &SecurityRule{Action: "allow", LogEnd: true}
	r.init(r, KindSecurityRule, name)
	return r
}

type securityRuleXML struct {
	XMLName      xml.Name    `xml:"entry"`
	Name         string      `xml:"name,attr"`
	From         *memberList `xml:"from"`
	To           *memberList `xml:"to"`
	Source       *memberList `xml:"source"`
	Destination  *memberList `xml:"destination"`
	Applications *memberList `xml:"application"`
	Services     *memberList `xml:"service"`
	Action       string      `xml:"action"`
	Description  string      `xml:"description,omitempty"`
	Tags         *memberList `xml:"tag,omitempty"`
	Disabled     string      `xml:"disabled,omitempty"`
	LogEnd       string      `xml:"log-end,omitempty"`
}

func anyIfEmpty(values []string) *memberList {
	if len(values) == 0 {
		return &memberList{Members: []string{"any"}}
	}
	return &memberList{Members: values}
}

func (r *SecurityRule) Element() string {
	e := securityRuleXML{
		Name:         r.Name(),
		From:         anyIfEmpty(r.From),
		To:           anyIfEmpty(r.To),
		Source:       anyIfEmpty(r.Source),
		Destination:  anyIfEmpty(r.Destination),
		Applications: anyIfEmpty(r.Applications),
		Services:     anyIfEmpty(r.Services),
		Action:       r.Action,
		Description:  r.Description,
		Tags:         members(r.Tags),
	}
	if r.Disabled {
		e.Disabled = "yes"
	}
	if r.LogEnd {
		e.LogEnd = "yes"
	}
	return marshalEntry(e)
}

// ParseSecurityRule decodes a vendor <entry> fragment into a detached
// security rule, inverting Element.
func ParseSecurityRule(entry []byte) (*SecurityRule, error) {
	var e securityRuleXML
	if err := xml.Unmarshal(entry, &e); err != nil {
		return nil, fmt.Errorf("pantree: parsing security rule entry: %w", err)
	}

	r := NewSecurityRule(e.Name)
	r.Action = e.Action
	r.Description = e.Description
	r.Disabled = e.Disabled == "yes"
	r.LogEnd = e.LogEnd == "yes"
	if e.Tags != nil {
		r.Tags = e.Tags.Members
	}
	assign := func(dst *[]string, src *memberList) {
		if src == nil || (len(src.Members) == 1 && src.Members[0] == "any") {
			*dst = nil
			return
		}
		*dst = src.Members
	}
	assign(&r.From, e.From)
	assign(&r.To, e.To)
	assign(&r.Source, e.Source)
	assign(&r.Destination, e.Destination)
	assign(&r.Applications, e.Applications)
	assign(&r.Services, e.Services)
	return r, nil
}
