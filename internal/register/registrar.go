// Package register implements the registration adapter: it drives the
// rhnreg_ks tool and the server's XML-RPC API to move a host between
// the registered and unregistered states.
package register

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/osbuild/rhn-register/internal/identity"
	"github.com/osbuild/rhn-register/internal/pluginconf"
	"github.com/osbuild/rhn-register/internal/rhnapi"
	"github.com/osbuild/rhn-register/internal/up2date"
)

const (
	// DefaultCommand is the registration tool shipped by rhn-setup.
	DefaultCommand = "rhnreg_ks"

	// DefaultStaleRepoFile is left behind by older RHN client tools and
	// confuses yum when the plugin writes its own repo definitions.
	DefaultStaleRepoFile = "/etc/yum.repos.d/rhnplugin.repo"

	// DefaultAPITimeout bounds every single API request.
	DefaultAPITimeout = 60 * time.Second
)

// ChannelAPI is the server-side capability the adapter needs beyond the
// registration tool itself. rhnapi.Client is the one real
// implementation.
type ChannelAPI interface {
	Login(username, password string) error
	Logout() error
	SystemChannels(systemID int) ([]string, error)
	SetSystemChannels(systemID int, labels []string) error
	DeleteSystem(systemID int) error
}

// Credentials authenticate both the registration tool and the API.
// They are supplied per invocation and never persisted.
type Credentials struct {
	Username string
	Password string
}

// RegisterOptions are the optional knobs of the registration command.
type RegisterOptions struct {
	ActivationKey string
	EnableEUS     bool
	Profilename   string
	SSLCACert     string
	SystemOrgID   string
	NoPackages    bool
}

// Registrar is the registration adapter. The zero value is not usable,
// use New.
type Registrar struct {
	Config        *up2date.Config
	Command       string
	PluginConfDir string
	StaleRepoFile string
	APITimeout    time.Duration

	api ChannelAPI
}

// var aliases for the external collaborators so that tests can mock
// them, see export_test.go
var (
	execCommand = exec.CommandContext

	newChannelAPI = func(hostname string, timeout time.Duration) (ChannelAPI, error) {
		return rhnapi.New(hostname, timeout)
	}
)

// New creates a registrar around the given up2date configuration with
// the stock paths and timeouts.
func New(config *up2date.Config) *Registrar {
	return &Registrar{
		Config:        config,
		Command:       DefaultCommand,
		PluginConfDir: pluginconf.DefaultDir,
		StaleRepoFile: DefaultStaleRepoFile,
		APITimeout:    DefaultAPITimeout,
	}
}

// IsRegistered reports whether the host currently holds a system
// identity file. The state is re-derived from the filesystem on every
// call, nothing is cached.
func (r *Registrar) IsRegistered() bool {
	return identity.Exists(r.Config.SystemIDPath())
}

// Configure persists the given server URL into the up2date
// configuration.
func (r *Registrar) Configure(serverURL string) error {
	r.Config.SetServerURL(serverURL)
	return r.Config.Save()
}

// Register runs the registration command. A non-zero exit is reported
// as *ExecError carrying the command line and the captured output.
func (r *Registrar) Register(ctx context.Context, creds Credentials, opts RegisterOptions) error {
	if opts.ActivationKey == "" && (creds.Username == "" || creds.Password == "") {
		return ErrMissingCredentials
	}

	var args []string
	if creds.Username != "" {
		args = append(args, "--username", creds.Username, "--password", creds.Password)
	}
	args = append(args, "--force")
	if opts.EnableEUS {
		args = append(args, "--use-eus-channel")
	}
	if opts.ActivationKey != "" {
		args = append(args, "--activationkey", opts.ActivationKey)
	}
	if opts.Profilename != "" {
		args = append(args, "--profilename", opts.Profilename)
	}
	if opts.SSLCACert != "" {
		args = append(args, "--sslCACert", opts.SSLCACert)
	}
	if opts.SystemOrgID != "" {
		args = append(args, "--systemorgid", opts.SystemOrgID)
	}
	if opts.NoPackages {
		args = append(args, "--nopackages")
	}

	logrus.Debugf("running %s", r.cmdline(args, creds.Password))
	cmd := execCommand(ctx, r.Command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return &ExecError{
			Cmdline:  r.cmdline(args, creds.Password),
			Output:   string(output),
			ExitCode: exitCode,
			Err:      err,
		}
	}
	return nil
}

// cmdline renders the command for logs and error reports, with the
// password masked.
func (r *Registrar) cmdline(args []string, password string) string {
	parts := append([]string{r.Command}, args...)
	for i, part := range parts {
		if part == password && password != "" {
			parts[i] = "********"
		}
	}
	return strings.Join(parts, " ")
}

// Unregister deletes the system's profile on the server and removes the
// local identity file.
func (r *Registrar) Unregister(creds Credentials) error {
	systemID, err := identity.SystemID(r.Config.SystemIDPath())
	if err != nil {
		return err
	}

	api, err := r.channelAPI(creds)
	if err != nil {
		return err
	}
	if err := api.DeleteSystem(systemID); err != nil {
		return err
	}

	return identity.Remove(r.Config.SystemIDPath())
}

// Subscribe subscribes the system to the requested channels on top of
// the ones it already has. An empty request is a no-op, including no
// API traffic at all.
func (r *Registrar) Subscribe(creds Credentials, channels []string) error {
	if len(channels) == 0 {
		return nil
	}

	systemID, err := identity.SystemID(r.Config.SystemIDPath())
	if err != nil {
		return err
	}

	api, err := r.channelAPI(creds)
	if err != nil {
		return err
	}
	current, err := api.SystemChannels(systemID)
	if err != nil {
		return err
	}

	return api.SetSystemChannels(systemID, unionChannels(current, channels))
}

// unionChannels appends the requested labels to the current ones,
// keeping order and dropping duplicates.
func unionChannels(current, requested []string) []string {
	seen := make(map[string]bool, len(current))
	union := make([]string, 0, len(current)+len(requested))
	for _, label := range current {
		if !seen[label] {
			seen[label] = true
			union = append(union, label)
		}
	}
	for _, label := range requested {
		if !seen[label] {
			seen[label] = true
			union = append(union, label)
		}
	}
	return union
}

// Enable prepares yum for RHN: the stale repo file from older client
// tools is removed and the rhnplugin takes over from
// subscription-manager.
func (r *Registrar) Enable() error {
	if err := os.Remove(r.StaleRepoFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale repo file %s: %w", r.StaleRepoFile, err)
	}

	if err := pluginconf.SetEnabled(r.PluginConfDir, "rhnplugin", true); err != nil {
		return err
	}
	return pluginconf.SetEnabled(r.PluginConfDir, "subscription-manager", false)
}

// Close logs out of the API session if one was opened. Best effort.
func (r *Registrar) Close() {
	if r.api == nil {
		return
	}
	if err := r.api.Logout(); err != nil {
		logrus.Debugf("failed to log out of the RHN API: %v", err)
	}
	r.api = nil
}

// channelAPI lazily connects to the API host derived from the
// configured server URL and logs in. The session is reused for the rest
// of the process run.
func (r *Registrar) channelAPI(creds Credentials) (ChannelAPI, error) {
	if r.api != nil {
		return r.api, nil
	}

	hostname, err := r.Config.ServerHostname()
	if err != nil {
		return nil, err
	}

	api, err := newChannelAPI(hostname, r.APITimeout)
	if err != nil {
		return nil, err
	}
	if err := api.Login(creds.Username, creds.Password); err != nil {
		return nil, err
	}

	r.api = api
	return api, nil
}
