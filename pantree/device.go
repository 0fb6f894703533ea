package pantree

import (
	"context"
	"fmt"

	"github.com/tphakala/go-panw/xmlapi"
)

const localhostEntry = "/config/devices/entry[@name='localhost.localdomain']"

// Device is a tree root bound to an XML API client. Firewall and Panorama
// implement it; every attached node reaches its device by walking parent
// references.
type Device interface {
	Node

	// APIClient returns the XML API client the tree issues calls through.
	APIClient() *xmlapi.Client

	// Version returns the device software version, zero until refreshed.
	Version() Version
}

// deviceInfo is the shared state of both root kinds.
type deviceInfo struct {
	client  *xmlapi.Client
	version Version
	serial  string
}

// systemInfo is the subset of "show system info" the roots retain.
type systemInfo struct {
	Hostname  string `xml:"system>hostname"`
	Serial    string `xml:"system>serial"`
	SWVersion string `xml:"system>sw-version"`
}

func (d *deviceInfo) refresh(ctx context.Context) error {
	resp, err := d.client.Op(ctx, "<show><system><info/></system></show>")
	if err != nil {
		return err
	}

	var info systemInfo
	if err := resp.Result.Unmarshal(&info); err != nil {
		return fmt.Errorf("pantree: parsing system info: %w", err)
	}

	d.serial = info.Serial
	if info.SWVersion != "" {
		v, err := ParseVersion(info.SWVersion)
		if err != nil {
			return err
		}
		d.version = v
	}
	return nil
}

// Firewall is the tree root for a single PAN-OS firewall.
type Firewall struct {
	ConfigNode
	deviceInfo
}

// NewFirewall creates a firewall root issuing calls through client.
func NewFirewall(client *xmlapi.Client) *Firewall {
	f := &Firewall{}
	f.deviceInfo.client = client
	f.init(f, KindFirewall, "")
	return f
}

// APIClient returns the XML API client the tree issues calls through.
func (f *Firewall) APIClient() *xmlapi.Client { return f.client }

// Version returns the device software version, zero until RefreshSystemInfo
// has run.
func (f *Firewall) Version() Version { return f.version }

// Serial returns the device serial number, empty until RefreshSystemInfo
// has run.
func (f *Firewall) Serial() string { return f.serial }

// Xpath returns the fixed firewall configuration root.
func (f *Firewall) Xpath() string { return localhostEntry }

// Element is unused for device roots; roots are addressed, never
// serialized.
func (f *Firewall) Element() string { return "" }

// RefreshSystemInfo queries the device and records its software version and
// serial number.
func (f *Firewall) RefreshSystemInfo(ctx context.Context) error {
	return f.refresh(ctx)
}

// Commit commits the candidate configuration and waits for the job to
// finish. A commit with nothing to do returns a nil job.
func (f *Firewall) Commit(ctx context.Context, opts *xmlapi.CommitOptions) (*xmlapi.Job, error) {
	jobID, err := f.client.Commit(ctx, opts)
	if err != nil {
		return nil, err
	}
	if jobID == "" {
		return nil, nil
	}
	return f.client.WaitJob(ctx, jobID, 0)
}

// Panorama is the tree root for a Panorama management server. Device groups
// attach directly under it.
type Panorama struct {
	ConfigNode
	deviceInfo
}

// NewPanorama creates a Panorama root issuing calls through client.
func NewPanorama(client *xmlapi.Client) *Panorama {
	p := &Panorama{}
	p.deviceInfo.client = client
	p.init(p, KindPanorama, "")
	return p
}

// APIClient returns the XML API client the tree issues calls through.
func (p *Panorama) APIClient() *xmlapi.Client { return p.client }

// Version returns the device software version, zero until RefreshSystemInfo
// has run.
func (p *Panorama) Version() Version { return p.version }

// Serial returns the device serial number, empty until RefreshSystemInfo
// has run.
func (p *Panorama) Serial() string { return p.serial }

// Xpath returns the fixed Panorama configuration root.
func (p *Panorama) Xpath() string { return localhostEntry }

// Element is unused for device roots.
func (p *Panorama) Element() string { return "" }

// RefreshSystemInfo queries Panorama and records its software version and
// serial number.
func (p *Panorama) RefreshSystemInfo(ctx context.Context) error {
	return p.refresh(ctx)
}
