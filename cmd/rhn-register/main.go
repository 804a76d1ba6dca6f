package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/osbuild/rhn-register/internal/register"
	"github.com/osbuild/rhn-register/internal/up2date"
)

var (
	state         string
	username      string
	password      string
	serverURL     string
	activationKey string
	enableEUS     bool
	channels      []string
	profilename   string
	sslCACert     string
	systemOrgID   string
	noPackages    bool
	configFile    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:           "rhn-register",
	Short:         "Register or unregister this host with an RHN Classic or Satellite server",
	Example:       "  rhn-register --state present --username admin --password secret --channel epel-6\n  rhn-register --state absent --username admin --password secret",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		config, err := loadToolConfig(configFile)
		if err != nil {
			return err
		}

		up2dateConfig, err := up2date.Load(config.Up2DateFile)
		if err != nil {
			return err
		}

		registrar := register.New(up2dateConfig)
		registrar.Command = config.Command
		registrar.PluginConfDir = config.PluginConfDir
		registrar.StaleRepoFile = config.StaleRepoFile
		registrar.APITimeout = config.APITimeout()
		defer registrar.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ExecTimeout())
		defer cancel()

		result, err := registrar.Run(ctx, register.Request{
			State:         state,
			Username:      username,
			Password:      password,
			ServerURL:     serverURL,
			ActivationKey: activationKey,
			EnableEUS:     enableEUS,
			Channels:      channels,
			Profilename:   profilename,
			SSLCACert:     sslCACert,
			SystemOrgID:   systemOrgID,
			NoPackages:    noPackages,
		})
		if err != nil {
			return err
		}

		return json.NewEncoder(os.Stdout).Encode(result)
	},
}

type failure struct {
	Failed  bool   `json:"failed"`
	Message string `json:"msg"`
}

func main() {
	rootCmd.Flags().StringVar(&state, "state", "present", "desired registration state, \"present\" or \"absent\"")
	rootCmd.Flags().StringVar(&username, "username", "", "Red Hat Network username")
	rootCmd.Flags().StringVar(&password, "password", "", "Red Hat Network password")
	rootCmd.Flags().StringVar(&serverURL, "server-url", "", "override the registration server URL and persist it to the up2date config")
	rootCmd.Flags().StringVar(&activationKey, "activation-key", "", "activation key to register with instead of username/password")
	rootCmd.Flags().BoolVar(&enableEUS, "enable-eus", false, "register to the Extended Update Support channel")
	rootCmd.Flags().StringSliceVar(&channels, "channel", nil, "channel label to subscribe to, can be given multiple times")
	rootCmd.Flags().StringVar(&profilename, "profilename", "", "profile name to register under")
	rootCmd.Flags().StringVar(&sslCACert, "sslcacert", "", "CA certificate to verify the registration server with")
	rootCmd.Flags().StringVar(&systemOrgID, "systemorgid", "", "organization id to register to, Satellite only")
	rootCmd.Flags().BoolVar(&noPackages, "nopackages", false, "do not report the package profile to the server")
	rootCmd.Flags().StringVar(&configFile, "config", defaultConfigFile, "tool configuration file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		encodeErr := json.NewEncoder(os.Stdout).Encode(failure{Failed: true, Message: err.Error()})
		if encodeErr != nil {
			logrus.Errorf("failed to report the failure: %v", encodeErr)
		}
		os.Exit(1)
	}
}
