package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/osbuild/rhn-register/internal/pluginconf"
	"github.com/osbuild/rhn-register/internal/register"
	"github.com/osbuild/rhn-register/internal/up2date"
)

const defaultConfigFile = "/etc/rhn-register/rhn-register.toml"

// toolConfig overrides the stock file locations and timeouts. All
// fields are optional, a missing config file means all defaults.
type toolConfig struct {
	Up2DateFile    string `toml:"up2date_file"`
	PluginConfDir  string `toml:"pluginconf_dir"`
	StaleRepoFile  string `toml:"stale_repo_file"`
	Command        string `toml:"command"`
	ExecTimeoutSec int    `toml:"exec_timeout_sec"`
	APITimeoutSec  int    `toml:"api_timeout_sec"`
}

func loadToolConfig(name string) (*toolConfig, error) {
	config := &toolConfig{
		Up2DateFile:    up2date.DefaultPath,
		PluginConfDir:  pluginconf.DefaultDir,
		StaleRepoFile:  register.DefaultStaleRepoFile,
		Command:        register.DefaultCommand,
		ExecTimeoutSec: 600,
		APITimeoutSec:  60,
	}

	_, err := toml.DecodeFile(name, config)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return config, nil
}

func (c *toolConfig) ExecTimeout() time.Duration {
	return time.Duration(c.ExecTimeoutSec) * time.Second
}

func (c *toolConfig) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSec) * time.Second
}
