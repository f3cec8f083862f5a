package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
)

const DefaultHost = "127.0.0.1"

// VersionInfo is the body of the /json/version endpoint.
type VersionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	UserAgent            string `json:"User-Agent"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

func VersionURL(host string, port int) string {
	if host == "" {
		host = DefaultHost
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/json/version"
}

// FetchVersion asks a debug endpoint for its browser-level websocket URL.
func FetchVersion(ctx context.Context, client *http.Client, host string, port int) (VersionInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, VersionURL(host, port), nil)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("build version request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("request version: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return VersionInfo{}, fmt.Errorf("read version response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return VersionInfo{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var info VersionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return VersionInfo{}, fmt.Errorf("decode version response: %w", err)
	}
	if info.WebSocketDebuggerURL == "" {
		return VersionInfo{}, fmt.Errorf("version response has no webSocketDebuggerUrl")
	}

	return info, nil
}
