package archiveorg

import "fmt"

const maxErrorBody = 256

// TransportError reports a failed upstream call: the upstream could not be
// reached, answered with a non-2xx status, or returned a body that is not
// JSON. StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("archive.org GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		msg := fmt.Sprintf("archive.org GET %s: unexpected status code %d", e.URL, e.StatusCode)
		if body := truncate(e.Body, maxErrorBody); body != "" {
			msg += ": " + body
		}
		return msg
	case e.URL != "":
		return fmt.Sprintf("archive.org GET %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("archive.org: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure is on the upstream side (5xx, 429,
// or no response at all) rather than a rejected request.
func (e *TransportError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
