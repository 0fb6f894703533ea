// Package panw provides native Go clients for Palo Alto Networks device and
// cloud APIs, plus the supporting pieces needed to ingest their telemetry
// into Splunk.
//
// # Features
//
//   - PAN-OS XML API, WildFire, AutoFocus and Licensing API clients
//   - Configuration tree mapper translating object mutations into
//     xpath-addressed XML API calls
//   - Splunk REST client for KV store collections and stored credentials
//   - Typed errors for precise error handling
//   - Functional options for flexible configuration
//
// # Quick Start
//
//	fw, err := xmlapi.NewClient(
//	    xmlapi.WithHostname("192.0.2.1"),
//	    xmlapi.WithAPIKey(apiKey),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := fw.Op(ctx, "<show><system><info/></system></show>")
//
// Hostname and API key resolve by precedence: explicit option, then a
// .panrc resource file, then the PAN_HOSTNAME / PAN_API_KEY environment
// variables.
//
// # Error Handling
//
// All clients share the error taxonomy defined in this package and report
// failures with types inspectable via errors.As:
//
//	_, err := fw.ConfigGet(ctx, xpath)
//	if err != nil {
//	    var status *panw.StatusError
//	    if errors.As(err, &status) {
//	        // Server answered with an error status
//	    }
//	}
//
// A TransportError means the request never completed; a StatusError means
// the server answered outside the 200-299 range (or a PAN-OS envelope
// reported status="error").
package panw
