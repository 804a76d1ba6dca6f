// Package identity deals with the RHN system identity file. The file is
// written by the registration tool on a successful registration and its
// mere presence marks the host as registered. It is an XML-RPC style
// document whose system_id member carries the server-assigned id.
package identity

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type member struct {
	Name  string `xml:"name"`
	Value string `xml:"value>string"`
}

type document struct {
	Members []member `xml:"param>value>struct>member"`
}

// Exists reports whether an identity file is present at path. This is
// the sole signal of "currently registered" and is re-derived from the
// filesystem on every call.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SystemID extracts the numeric system id from the identity file at
// path. The stored value is usually prefixed with "ID-".
func SystemID(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read system identity file: %w", err)
	}

	var doc document
	if err := xml.Unmarshal(content, &doc); err != nil {
		return 0, fmt.Errorf("failed to parse system identity file %s: %w", path, err)
	}

	for _, m := range doc.Members {
		if m.Name != "system_id" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(m.Value, "ID-"))
		if err != nil {
			return 0, fmt.Errorf("malformed system_id %q in %s: %w", m.Value, path, err)
		}
		return id, nil
	}

	return 0, fmt.Errorf("no system_id member in %s", path)
}

// Remove deletes the identity file, flipping the host back to the
// unregistered state.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove system identity file: %w", err)
	}
	return nil
}
