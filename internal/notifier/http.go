package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var httpClient = &http.Client{Timeout: SendTimeout}

// postJSON POSTs body as JSON to url, classifying failures into the
// NotifyError kinds spec.md §7 names.
func postJSON(ctx context.Context, destination, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return transportFailure(destination, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return transportFailure(destination, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return timeout(destination, err)
		}
		return transportFailure(destination, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return non2xxResponse(destination, resp.StatusCode)
	}
	return nil
}
