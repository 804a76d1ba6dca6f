// Package up2date reads and writes the RHN Classic client configuration,
// usually found at /etc/sysconfig/rhn/up2date. The file is a flat
// key=value store; only a couple of keys are interesting to us, the rest
// is carried through untouched.
package up2date

import (
	"fmt"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const (
	// DefaultPath is where the RHN client tools keep their configuration.
	DefaultPath = "/etc/sysconfig/rhn/up2date"

	defaultServerURL    = "https://xmlrpc.rhn.redhat.com/XMLRPC"
	defaultSystemIDPath = "/etc/sysconfig/rhn/systemid"
)

// Config is the host-local registration configuration. Unknown keys read
// from the file survive a load/save round-trip.
type Config struct {
	path string
	file *ini.File
}

// Load reads the configuration from path. A missing file is not an
// error, the stock RHN defaults apply in that case.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("up2date config %s does not exist, using defaults", path)
			return &Config{path: path, file: ini.Empty()}, nil
		}
		return nil, fmt.Errorf("failed to read up2date config %s: %w", path, err)
	}

	file, err := ini.Load(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse up2date config %s: %w", path, err)
	}

	return &Config{path: path, file: file}, nil
}

// Save writes the configuration back to the path it was loaded from.
func (c *Config) Save() error {
	if err := c.file.SaveTo(c.path); err != nil {
		return fmt.Errorf("failed to write up2date config %s: %w", c.path, err)
	}
	return nil
}

func (c *Config) get(key, fallback string) string {
	value := c.file.Section("").Key(key).String()
	if value == "" {
		return fallback
	}
	return value
}

// ServerURL returns the registration server URL, e.g.
// https://xmlrpc.rhn.redhat.com/XMLRPC.
func (c *Config) ServerURL() string {
	return c.get("serverURL", defaultServerURL)
}

// SetServerURL overwrites the registration server URL. The change is
// only persisted by a subsequent Save.
func (c *Config) SetServerURL(serverURL string) {
	c.file.Section("").Key("serverURL").SetValue(serverURL)
}

// SystemIDPath returns the location of the system identity file.
func (c *Config) SystemIDPath() string {
	return c.get("systemIdPath", defaultSystemIDPath)
}

// ServerHostname returns the bare hostname of the configured server URL.
// The XML-RPC API lives on the same host as the registration endpoint,
// but under a different path.
func (c *Config) ServerHostname() (string, error) {
	u, err := url.Parse(c.ServerURL())
	if err != nil {
		return "", fmt.Errorf("invalid serverURL %q: %w", c.ServerURL(), err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("serverURL %q has no hostname", c.ServerURL())
	}
	return u.Hostname(), nil
}
