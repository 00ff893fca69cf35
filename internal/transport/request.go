package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/logging"
)

// maxErrorBody caps how much of an error response ends up in APIError.
const maxErrorBody = 512

// DecodeResponse reads and closes resp.Body. A 200 is decoded into target;
// any other status is returned as an APIError carrying the start of the
// body, which is where Overpass and Nominatim put their reason.
func DecodeResponse(resp *http.Response, source string, target any) error {
	defer closeBody(resp.Body, source)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", source+" response", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := errors.NewAPIError(source, resp.StatusCode, snippet(body))
		if resp.Request != nil && resp.Request.URL != nil {
			apiErr.Endpoint = resp.Request.URL.String()
		}
		return apiErr
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", source+" response", err)
	}
	return nil
}

func closeBody(body io.Closer, source string) {
	if err := body.Close(); err != nil {
		logging.Warn().Err(err).Str("source", source).Msg("Failed to close response body")
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
