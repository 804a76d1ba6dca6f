package rhnapi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const LIST_CHANNELS_RESPONSE = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>
<member><name>channel_label</name><value><string>rhel-x86_64-server-6</string></value></member>
<member><name>channel_name</name><value><string>Red Hat Enterprise Linux Server</string></value></member>
</struct></value>
<value><struct>
<member><name>channel_label</name><value><string>rhel-x86_64-server-optional-6</string></value></member>
<member><name>channel_name</name><value><string>RHEL Server Optional</string></value></member>
</struct></value>
</data></array></value></param></params></methodResponse>`

// fakeServer answers the XML-RPC procedures the client knows about and
// records the raw request bodies, keyed by method name.
func fakeServer(t *testing.T) (*Client, map[string]string) {
	t.Helper()
	requests := make(map[string]string)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		method := methodName(string(body))
		requests[method] = string(body)

		switch method {
		case "auth.login":
			fmt.Fprint(w, `<?xml version="1.0"?><methodResponse><params><param><value><string>sessiontoken</string></value></param></params></methodResponse>`)
		case "channel.software.listSystemChannels":
			fmt.Fprint(w, LIST_CHANNELS_RESPONSE)
		default:
			fmt.Fprint(w, `<?xml version="1.0"?><methodResponse><params><param><value><int>1</int></value></param></params></methodResponse>`)
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewWithEndpoint(server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, requests
}

func methodName(body string) string {
	_, after, found := strings.Cut(body, "<methodName>")
	if !found {
		return ""
	}
	name, _, _ := strings.Cut(after, "</methodName>")
	return name
}

func TestLoginAndListChannels(t *testing.T) {
	client, requests := fakeServer(t)

	require.NoError(t, client.Login("admin", "hunter2"))

	labels, err := client.SystemChannels(12345)
	require.NoError(t, err, "Failed to list system channels")
	assert.Equal(t, []string{"rhel-x86_64-server-6", "rhel-x86_64-server-optional-6"}, labels)

	// the session token from auth.login must be passed along
	assert.Contains(t, requests["channel.software.listSystemChannels"], "sessiontoken")
	assert.Contains(t, requests["channel.software.listSystemChannels"], "<int>12345</int>")
}

func TestSetSystemChannels(t *testing.T) {
	client, requests := fakeServer(t)
	require.NoError(t, client.Login("admin", "hunter2"))

	err := client.SetSystemChannels(12345, []string{"rhel-x86_64-server-6", "epel-6"})
	require.NoError(t, err)

	body := requests["channel.software.setSystemChannels"]
	assert.Contains(t, body, "rhel-x86_64-server-6")
	assert.Contains(t, body, "epel-6")
}

func TestDeleteSystem(t *testing.T) {
	client, requests := fakeServer(t)
	require.NoError(t, client.Login("admin", "hunter2"))

	require.NoError(t, client.DeleteSystem(12345))
	assert.Contains(t, requests["system.deleteSystems"], "<int>12345</int>")
}

func TestLoginFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>2950</int></value></member>
<member><name>faultString</name><value><string>Either the password or username is incorrect</string></value></member>
</struct></value></fault></methodResponse>`)
	}))
	defer server.Close()

	client, err := NewWithEndpoint(server.URL)
	require.NoError(t, err)
	defer client.Close()

	err = client.Login("admin", "wrong")
	assert.ErrorContains(t, err, "auth.login failed")
}
