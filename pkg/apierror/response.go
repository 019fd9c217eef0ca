package apierror

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// MaxErrorBodySize bounds how much of an error response is read.
const MaxErrorBodySize = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ReadMessage reads the message out of an `{"error": "..."}` response body.
// It returns an empty string if the body has no such message.
func ReadMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, MaxErrorBodySize))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// CheckResponse returns nil for 2xx responses. Otherwise it consumes the body
// and returns a server error with the status code, the server message and the
// request id.
func CheckResponse(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		return nil
	}
	msg := ReadMessage(res.Body)
	if msg == "" {
		msg = strings.ToLower(http.StatusText(res.StatusCode))
	}
	err := Server(res.StatusCode, msg)
	if res.Request != nil {
		err.RequestID = res.Request.Header.Get(RequestIDHeader)
	}
	return WithRequestID(err, res.Header)
}
