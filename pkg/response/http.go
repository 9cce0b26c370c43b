package response

import (
	"encoding/json"
	"io"
	"net/http"

	pkgerrors "github.com/etki/mvno-api-client/pkg/errors"
)

// BodySource is the slice of an HTTP response this package needs: something
// that hands over the raw reply body. Transport concerns stay with the
// caller.
type BodySource interface {
	Body() []byte
}

// FromJSON decodes a raw JSON body and parses it into an envelope. Bodies
// that fail to decode are rejected with a decode-failure error; a JSON null
// decodes to an empty payload and fails validation like any other payload
// missing its required keys.
func FromJSON(body []byte) (*Envelope, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecodeFailure, err, "decoding response body")
	}
	return Parse(payload)
}

// FromBody builds an envelope from a body source collaborator.
func FromBody(src BodySource) (*Envelope, error) {
	if src == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "body source is required")
	}
	return FromJSON(src.Body())
}

// FromHTTPResponse drains a net/http response body and parses it into an
// envelope. The caller keeps ownership of the response; this reads the body
// to EOF but does not close it.
func FromHTTPResponse(resp *http.Response) (*Envelope, error) {
	if resp == nil || resp.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, "http response has no body")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecodeFailure, err, "reading response body")
	}
	return FromJSON(body)
}
