// Package rhnapi is a thin client for the RHN Classic / Satellite /
// Spacewalk XML-RPC API. Only the handful of procedures this project
// consumes are wrapped; everything else the API offers is out of scope.
package rhnapi

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/sirupsen/logrus"
)

// systemChannel mirrors the structs returned by
// channel.software.listSystemChannels.
type systemChannel struct {
	Label string `xmlrpc:"channel_label"`
	Name  string `xmlrpc:"channel_name"`
}

// Client talks to a single RHN server. It is not safe for concurrent
// use, which is fine for a one-shot process.
type Client struct {
	rpc     *xmlrpc.Client
	session string
}

// New creates a client for the API endpoint of the given server
// hostname. All requests are bounded by timeout.
func New(hostname string, timeout time.Duration) (*Client, error) {
	endpoint := fmt.Sprintf("https://%s/rpc/api", hostname)

	// kolo/xmlrpc owns the http.Client, so the timeout has to live in
	// the transport.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}

	rpc, err := xmlrpc.NewClient(endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client for %s: %w", endpoint, err)
	}

	logrus.Debugf("created RHN API client for %s", endpoint)
	return &Client{rpc: rpc}, nil
}

// NewWithEndpoint is like New but takes the full endpoint URL. Useful
// for talking to a server that doesn't listen on https, like a test
// instance.
func NewWithEndpoint(endpoint string) (*Client, error) {
	rpc, err := xmlrpc.NewClient(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client for %s: %w", endpoint, err)
	}
	return &Client{rpc: rpc}, nil
}

// Login obtains a session token. All other calls require it.
func (c *Client) Login(username, password string) error {
	err := c.rpc.Call("auth.login", []interface{}{username, password}, &c.session)
	if err != nil {
		return fmt.Errorf("auth.login failed: %w", err)
	}
	return nil
}

// Logout invalidates the session token. Best effort, a half-open
// session expires on the server anyway.
func (c *Client) Logout() error {
	if c.session == "" {
		return nil
	}
	var result int
	err := c.rpc.Call("auth.logout", []interface{}{c.session}, &result)
	c.session = ""
	return err
}

// SystemChannels returns the labels of the channels the system is
// currently subscribed to.
func (c *Client) SystemChannels(systemID int) ([]string, error) {
	var channels []systemChannel
	err := c.rpc.Call("channel.software.listSystemChannels", []interface{}{c.session, systemID}, &channels)
	if err != nil {
		return nil, fmt.Errorf("channel.software.listSystemChannels failed: %w", err)
	}

	labels := make([]string, len(channels))
	for i, channel := range channels {
		labels[i] = channel.Label
	}
	return labels, nil
}

// SetSystemChannels replaces the system's channel subscriptions with
// the given labels.
func (c *Client) SetSystemChannels(systemID int, labels []string) error {
	var result int
	err := c.rpc.Call("channel.software.setSystemChannels", []interface{}{c.session, systemID, labels}, &result)
	if err != nil {
		return fmt.Errorf("channel.software.setSystemChannels failed: %w", err)
	}
	return nil
}

// DeleteSystem removes the system's profile from the server.
func (c *Client) DeleteSystem(systemID int) error {
	var result int
	err := c.rpc.Call("system.deleteSystems", []interface{}{c.session, []int{systemID}}, &result)
	if err != nil {
		return fmt.Errorf("system.deleteSystems failed: %w", err)
	}
	return nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}
