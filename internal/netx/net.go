// Package netx holds HTTP reachability helpers.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Ping sends a HEAD request to url. Any response below 500 means the host is
// reachable; transport failures and 5xx responses are errors.
func Ping(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping failed: %s", resp.Status)
	}
	return nil
}
