package ember

import (
	"fmt"
	"net/http"
)

// statusTextFor returns the reason phrase for code and whether code is a
// recognized status code. Only codes net/http.StatusText recognizes may
// be set on a Response; setting any other code is an error (see
// Response.SetStatusCode). air itself has no status-code table of its
// own — it calls net/http.StatusText directly wherever it needs a reason
// phrase — so this does the same instead of hand-rolling a duplicate
// map.
func statusTextFor(code int) (string, bool) {
	text := http.StatusText(code)
	return text, text != ""
}

// errUnknownStatusCode reports that code has no entry in the fixed
// status-code-to-text table.
func errUnknownStatusCode(code int) error {
	return fmt.Errorf("ember: unknown status code: %d", code)
}
