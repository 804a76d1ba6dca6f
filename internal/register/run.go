package register

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Request is everything a single invocation can ask for.
type Request struct {
	State         string
	Username      string
	Password      string
	ServerURL     string
	ActivationKey string
	EnableEUS     bool
	Channels      []string
	Profilename   string
	SSLCACert     string
	SystemOrgID   string
	NoPackages    bool
}

// Result reports the outcome of a successful run.
type Result struct {
	Changed bool   `json:"changed"`
	Message string `json:"msg"`
}

// Run drives the host towards the requested state. It is idempotent: a
// host already in the requested state yields Changed=false without any
// external call. Registration and subscription are not transactional, a
// subscription failure leaves the host registered.
func (r *Registrar) Run(ctx context.Context, req Request) (Result, error) {
	creds := Credentials{Username: req.Username, Password: req.Password}

	switch req.State {
	case "present":
		// validated before anything external is touched
		if req.ActivationKey == "" && (req.Username == "" || req.Password == "") {
			return Result{}, ErrMissingCredentials
		}

		if r.IsRegistered() {
			return Result{Changed: false, Message: "System already registered."}, nil
		}

		if req.ServerURL != "" {
			if err := r.Configure(req.ServerURL); err != nil {
				return Result{}, err
			}
		}

		if err := r.Enable(); err != nil {
			return Result{}, err
		}

		opts := RegisterOptions{
			ActivationKey: req.ActivationKey,
			EnableEUS:     req.EnableEUS,
			Profilename:   req.Profilename,
			SSLCACert:     req.SSLCACert,
			SystemOrgID:   req.SystemOrgID,
			NoPackages:    req.NoPackages,
		}
		if err := r.Register(ctx, creds, opts); err != nil {
			return Result{}, err
		}

		if err := r.Subscribe(creds, req.Channels); err != nil {
			return Result{}, err
		}

		logrus.Infof("registered system with %s", r.Config.ServerURL())
		return Result{
			Changed: true,
			Message: fmt.Sprintf("System successfully registered to '%s'.", r.Config.ServerURL()),
		}, nil

	case "absent":
		if !r.IsRegistered() {
			return Result{Changed: false, Message: "System already unregistered."}, nil
		}

		if err := r.Unregister(creds); err != nil {
			return Result{}, err
		}

		logrus.Infof("unregistered system from %s", r.Config.ServerURL())
		return Result{
			Changed: true,
			Message: fmt.Sprintf("System successfully unregistered from %s.", r.Config.ServerURL()),
		}, nil

	default:
		return Result{}, fmt.Errorf("unknown state %q, expected \"present\" or \"absent\"", req.State)
	}
}
