package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	pkgerrors "github.com/etki/mvno-api-client/pkg/errors"
)

type staticBody struct {
	body []byte
}

func (s staticBody) Body() []byte { return s.body }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingReader) Close() error             { return nil }

func TestFromJSONParsesStandardBody(t *testing.T) {
	env, err := FromJSON([]byte(`{"responseStatus":true,"responseCode":0,"timestamp":1700000000}`))
	if err != nil {
		t.Fatalf("FromJSON() returned unexpected error: %v", err)
	}

	ok, err := env.IsSuccessful()
	if err != nil {
		t.Fatalf("IsSuccessful() returned unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected successful envelope")
	}

	ts, err := env.Timestamp()
	if err != nil {
		t.Fatalf("Timestamp() returned unexpected error: %v", err)
	}
	if ts != 1700000000 {
		t.Fatalf("expected timestamp 1700000000, got %d", ts)
	}
}

func TestFromJSONDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "truncated object", body: `{"responseStatus":`},
		{name: "not json", body: `<html>boom</html>`},
		{name: "array body", body: `[1,2,3]`},
		{name: "scalar body", body: `"pong"`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.body))
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDecodeFailure {
				t.Fatalf("expected decode failure, got %v", err)
			}
		})
	}
}

func TestFromJSONNullBodyFailsValidation(t *testing.T) {
	// JSON null decodes into a nil mapping, which then misses every
	// standard key.
	_, err := FromJSON([]byte(`null`))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeMalformedResponse {
		t.Fatalf("expected malformed response, got %v", err)
	}

	want := []string{KeyResponseStatus, KeyResponseCode, KeyTimestamp}
	if got := MissingKeys(err); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected missing keys %v, got %v", want, got)
	}
}

func TestFromBody(t *testing.T) {
	env, err := FromBody(staticBody{body: []byte(`{"exception":"timeout","fault":"Receiver"}`)})
	if err != nil {
		t.Fatalf("FromBody() returned unexpected error: %v", err)
	}

	if ok, err := env.IsServerException(); err != nil || !ok {
		t.Fatalf("expected server exception, got %v/%v", ok, err)
	}
}

func TestFromBodyNilSource(t *testing.T) {
	_, err := FromBody(nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidState {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestFromHTTPResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	if _, err := rec.WriteString(`{"responseStatus":false,"responseCode":42,"timestamp":1700000000,"responseMessage":"bad request"}`); err != nil {
		t.Fatalf("writing recorder body: %v", err)
	}
	resp := rec.Result()
	defer resp.Body.Close()

	env, err := FromHTTPResponse(resp)
	if err != nil {
		t.Fatalf("FromHTTPResponse() returned unexpected error: %v", err)
	}

	code, err := env.ResponseCode()
	if err != nil {
		t.Fatalf("ResponseCode() returned unexpected error: %v", err)
	}
	if code != 42 {
		t.Fatalf("expected code 42, got %d", code)
	}

	message, err := env.ResponseMessage()
	if err != nil {
		t.Fatalf("ResponseMessage() returned unexpected error: %v", err)
	}
	if message != "bad request" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestFromHTTPResponseGuards(t *testing.T) {
	if _, err := FromHTTPResponse(nil); err == nil {
		t.Fatal("expected nil response to be rejected")
	}

	resp := &http.Response{Body: failingReader{}}
	_, err := FromHTTPResponse(resp)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDecodeFailure {
		t.Fatalf("expected decode failure on read error, got %v", err)
	}
}
