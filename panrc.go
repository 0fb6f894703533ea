package panw

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables consulted when neither an explicit option nor a
// .panrc entry supplies a value.
const (
	EnvHostname = "PAN_HOSTNAME"
	EnvAPIKey   = "PAN_API_KEY"
	EnvUsername = "PAN_USERNAME"
	EnvPassword = "PAN_PASSWORD"
)

// Panrc holds values parsed from .panrc resource files. Entries are of the
// form key=value or key%tag=value; tagged entries are only considered when
// the same tag is requested.
type Panrc struct {
	Hostname string
	Port     string
	APIKey   string
	Username string
	Password string
}

// DefaultPanrcPaths returns the ordered list of candidate .panrc files:
// the current directory first, then the user's home directory.
func DefaultPanrcPaths() []string {
	paths := []string{".panrc"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".panrc"))
	}
	return paths
}

// LoadPanrc parses the given files in order and returns the merged result.
// For each key the first file that defines it wins; later files never
// override earlier ones. Missing files are skipped. A non-empty tag selects
// key%tag entries; an empty tag selects only untagged entries.
func LoadPanrc(tag string, paths ...string) (*Panrc, error) {
	if len(paths) == 0 {
		paths = DefaultPanrcPaths()
	}

	rc := &Panrc{}
	for _, path := range paths {
		if err := rc.mergeFile(path, tag); err != nil {
			return nil, err
		}
	}
	return rc, nil
}

func (rc *Panrc) mergeFile(path, tag string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("panw: reading %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		name, entryTag, _ := strings.Cut(key, "%")
		if entryTag != tag {
			continue
		}
		rc.set(name, value)
	}
	return scanner.Err()
}

// set assigns value to the named field unless it is already populated,
// preserving first-match-wins across the file search order.
func (rc *Panrc) set(name, value string) {
	switch name {
	case "hostname":
		if rc.Hostname == "" {
			rc.Hostname = value
		}
	case "port":
		if rc.Port == "" {
			rc.Port = value
		}
	case "api_key":
		if rc.APIKey == "" {
			rc.APIKey = value
		}
	case "api_username":
		if rc.Username == "" {
			rc.Username = value
		}
	case "api_password":
		if rc.Password == "" {
			rc.Password = value
		}
	}
}

// Resolve returns the first non-empty value in precedence order: the
// explicit constructor argument, then the .panrc value, then the named
// environment variable.
func Resolve(explicit, panrc, envVar string) string {
	if explicit != "" {
		return explicit
	}
	if panrc != "" {
		return panrc
	}
	return os.Getenv(envVar)
}
