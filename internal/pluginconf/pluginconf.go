// Package pluginconf toggles yum plugins on and off through their
// ini-style configuration files under /etc/yum/pluginconf.d.
package pluginconf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// DefaultDir is where yum looks for plugin configuration.
const DefaultDir = "/etc/yum/pluginconf.d"

// SetEnabled flips the enabled flag in the main section of the plugin's
// configuration file in dir. The file and the section are created when
// absent, other keys are left alone.
func SetEnabled(dir, plugin string, enabled bool) error {
	path := filepath.Join(dir, plugin+".conf")

	var file *ini.File
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		file, err = ini.Load(content)
		if err != nil {
			return fmt.Errorf("failed to parse plugin config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		file = ini.Empty()
	default:
		return fmt.Errorf("failed to read plugin config %s: %w", path, err)
	}

	value := "0"
	if enabled {
		value = "1"
	}
	file.Section("main").Key("enabled").SetValue(value)

	logrus.Debugf("setting enabled=%s in %s", value, path)
	if err := file.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write plugin config %s: %w", path, err)
	}
	return nil
}
