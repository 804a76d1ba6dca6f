package pluginconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

var RHNPLUGIN_CONF = `[main]
enabled = 0
gpgcheck = 1

[rhel-x86_64-server-6]
enabled = 1
`

func readEnabled(t *testing.T, path, section string) string {
	t.Helper()
	file, err := ini.Load(path)
	require.NoError(t, err)
	return file.Section(section).Key("enabled").String()
}

func TestSetEnabledRewritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rhnplugin.conf")
	require.NoError(t, os.WriteFile(path, []byte(RHNPLUGIN_CONF), 0600))

	require.NoError(t, SetEnabled(dir, "rhnplugin", true))

	assert.Equal(t, "1", readEnabled(t, path, "main"))
	// sections other than main must not be touched
	assert.Equal(t, "1", readEnabled(t, path, "rhel-x86_64-server-6"))

	require.NoError(t, SetEnabled(dir, "rhnplugin", false))
	assert.Equal(t, "0", readEnabled(t, path, "main"))
}

func TestSetEnabledCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SetEnabled(dir, "subscription-manager", false))

	path := filepath.Join(dir, "subscription-manager.conf")
	assert.Equal(t, "0", readEnabled(t, path, "main"))
}
