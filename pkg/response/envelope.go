// Package response models the JSON envelope returned by the MVNO platform
// API. Every reply is either a standard envelope (status flag, numeric code,
// epoch timestamp, optional message) or an exceptional envelope (a textual
// cause plus a fault tag naming which side caused it). The package validates
// a decoded body into a typed Envelope and gates every accessor on the state
// it needs, so callers cannot read fields the reply does not carry.
package response

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/etki/mvno-api-client/pkg/errors"
)

// Envelope payload keys.
const (
	KeyException       = "exception"
	KeyFault           = "fault"
	KeyResponseStatus  = "responseStatus"
	KeyResponseCode    = "responseCode"
	KeyTimestamp       = "timestamp"
	KeyResponseMessage = "responseMessage"
)

// Fault tags which side of the conversation caused an exceptional reply.
type Fault string

const (
	// FaultReceiver marks a server-caused exception.
	FaultReceiver Fault = "Receiver"
	// FaultSender marks a client-caused exception.
	FaultSender Fault = "Sender"
)

// Shape identifies which of the two envelope layouts a payload matched.
type Shape int

const (
	ShapeUnset Shape = iota
	ShapeStandard
	ShapeExceptional
)

func (s Shape) String() string {
	switch s {
	case ShapeStandard:
		return "standard"
	case ShapeExceptional:
		return "exceptional"
	default:
		return "unset"
	}
}

var (
	standardKeys    = []string{KeyResponseStatus, KeyResponseCode, KeyTimestamp}
	exceptionalKeys = []string{KeyException, KeyFault}
)

// Envelope is a single validated platform reply. The payload is assigned
// exactly once and never mutated afterwards, so a parsed Envelope is safe to
// share across readers.
type Envelope struct {
	payload map[string]any
	shape   Shape

	dtOnce sync.Once
	dt     time.Time
}

// Parse validates a decoded payload and returns the typed envelope.
func Parse(payload map[string]any) (*Envelope, error) {
	e := &Envelope{}
	if err := e.SetPayload(payload); err != nil {
		return nil, err
	}
	return e, nil
}

// SetPayload validates the decoded payload and stores it. The layout is
// picked by key presence: anything carrying an exception or fault key is held
// to the exceptional layout, everything else to the standard one. All missing
// required keys are reported together, in check order. A second call is a
// usage error; envelopes are single-assignment.
func (e *Envelope) SetPayload(data map[string]any) error {
	if e.shape != ShapeUnset {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "payload is already set")
	}

	shape := ShapeStandard
	required := standardKeys
	if hasKey(data, KeyException) || hasKey(data, KeyFault) {
		shape = ShapeExceptional
		required = exceptionalKeys
	}

	var missing []string
	for _, key := range required {
		if !hasKey(data, key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.
			New(pkgerrors.CodeMalformedResponse, fmt.Sprintf("missing required keys: %s", strings.Join(missing, ", "))).
			WithDetails(missing)
	}

	e.payload = data
	e.shape = shape
	return nil
}

// MissingKeys extracts the missing-key list from a malformed-response error.
// It returns nil for any other error.
func MissingKeys(err error) []string {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeMalformedResponse {
		return nil
	}
	keys, _ := typed.Details().([]string)
	return keys
}

// Payload returns the stored payload verbatim.
func (e *Envelope) Payload() (map[string]any, error) {
	if err := e.requireSet(); err != nil {
		return nil, err
	}
	return e.payload, nil
}

// HasItem reports whether the payload carries the key, by presence rather
// than truthiness.
func (e *Envelope) HasItem(key string) (bool, error) {
	if err := e.requireSet(); err != nil {
		return false, err
	}
	_, ok := e.payload[key]
	return ok, nil
}

// Item returns the raw payload value for the key. Asking for an absent key is
// a usage error; check HasItem first.
func (e *Envelope) Item(key string) (any, error) {
	ok, err := e.HasItem(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidState, fmt.Sprintf("item %q doesn't exist", key))
	}
	return e.payload[key], nil
}

// Shape returns the layout the payload matched during validation.
func (e *Envelope) Shape() Shape {
	if e == nil {
		return ShapeUnset
	}
	return e.shape
}

// IsExceptional reports whether the reply carries a fault rather than a
// normal result.
func (e *Envelope) IsExceptional() (bool, error) {
	if err := e.requireSet(); err != nil {
		return false, err
	}
	return e.shape == ShapeExceptional, nil
}

// IsSuccessful reports whether the reply is a standard envelope with a truthy
// status flag. Exceptional replies are never successful.
func (e *Envelope) IsSuccessful() (bool, error) {
	if err := e.requireSet(); err != nil {
		return false, err
	}
	if e.shape == ShapeExceptional {
		return false, nil
	}
	return truthy(e.payload[KeyResponseStatus]), nil
}

// ResponseMessage returns the optional human-readable message of a standard
// reply, or the empty string when absent.
func (e *Envelope) ResponseMessage() (string, error) {
	if err := e.requireStandard(); err != nil {
		return "", err
	}
	message, _ := stringFromAny(e.payload[KeyResponseMessage])
	return message, nil
}

// ResponseCode returns the numeric code of a standard reply.
func (e *Envelope) ResponseCode() (int, error) {
	if err := e.requireStandard(); err != nil {
		return 0, err
	}
	code, err := intFromAny(e.payload[KeyResponseCode])
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeMalformedResponse, "responseCode is not numeric")
	}
	return code, nil
}

// Timestamp returns the epoch seconds of a successful reply. Unsuccessful
// replies fail with the code and message embedded when the payload carries
// them.
func (e *Envelope) Timestamp() (int64, error) {
	if err := e.requireSuccessful(); err != nil {
		return 0, err
	}
	ts, err := int64FromAny(e.payload[KeyTimestamp])
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeMalformedResponse, "timestamp is not numeric")
	}
	return ts, nil
}

// Exception returns the textual cause of an exceptional reply.
func (e *Envelope) Exception() (string, error) {
	if err := e.requireExceptional(); err != nil {
		return "", err
	}
	cause, _ := stringFromAny(e.payload[KeyException])
	return cause, nil
}

// ExceptionSource returns the fault tag of an exceptional reply.
func (e *Envelope) ExceptionSource() (Fault, error) {
	if err := e.requireExceptional(); err != nil {
		return "", err
	}
	source, _ := stringFromAny(e.payload[KeyFault])
	return Fault(source), nil
}

// IsServerException reports whether the fault originated on the server side.
func (e *Envelope) IsServerException() (bool, error) {
	source, err := e.ExceptionSource()
	if err != nil {
		return false, err
	}
	return source == FaultReceiver, nil
}

// IsClientException reports whether the fault originated on the client side.
func (e *Envelope) IsClientException() (bool, error) {
	source, err := e.ExceptionSource()
	if err != nil {
		return false, err
	}
	return source == FaultSender, nil
}

// DateTime returns the reply timestamp as a UTC time. The value is computed
// once on first read and cached; concurrent readers share the same value.
func (e *Envelope) DateTime() (time.Time, error) {
	ts, err := e.Timestamp()
	if err != nil {
		return time.Time{}, err
	}
	e.dtOnce.Do(func() {
		e.dt = time.Unix(ts, 0).UTC()
	})
	return e.dt, nil
}

// Standard is the typed view of a standard reply.
type Standard struct {
	Succeeded bool
	Code      int
	Timestamp int64
	Message   string
}

// Exceptional is the typed view of an exceptional reply.
type Exceptional struct {
	Cause  string
	Source Fault
}

// AsStandard converts a standard reply into its typed view, rejecting
// non-numeric code or timestamp values.
func (e *Envelope) AsStandard() (Standard, error) {
	if err := e.requireStandard(); err != nil {
		return Standard{}, err
	}
	code, err := intFromAny(e.payload[KeyResponseCode])
	if err != nil {
		return Standard{}, pkgerrors.New(pkgerrors.CodeMalformedResponse, "responseCode is not numeric")
	}
	ts, err := int64FromAny(e.payload[KeyTimestamp])
	if err != nil {
		return Standard{}, pkgerrors.New(pkgerrors.CodeMalformedResponse, "timestamp is not numeric")
	}
	message, _ := stringFromAny(e.payload[KeyResponseMessage])
	return Standard{
		Succeeded: truthy(e.payload[KeyResponseStatus]),
		Code:      code,
		Timestamp: ts,
		Message:   message,
	}, nil
}

// AsExceptional converts an exceptional reply into its typed view.
func (e *Envelope) AsExceptional() (Exceptional, error) {
	if err := e.requireExceptional(); err != nil {
		return Exceptional{}, err
	}
	cause, _ := stringFromAny(e.payload[KeyException])
	source, _ := stringFromAny(e.payload[KeyFault])
	return Exceptional{Cause: cause, Source: Fault(source)}, nil
}

func (e *Envelope) requireSet() error {
	if e == nil || e.shape == ShapeUnset {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "response payload is not set")
	}
	return nil
}

func (e *Envelope) requireStandard() error {
	if err := e.requireSet(); err != nil {
		return err
	}
	if e.shape == ShapeExceptional {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "response is an exceptional response")
	}
	return nil
}

func (e *Envelope) requireExceptional() error {
	if err := e.requireSet(); err != nil {
		return err
	}
	if e.shape != ShapeExceptional {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "response is not an exceptional response")
	}
	return nil
}

func (e *Envelope) requireSuccessful() error {
	ok, err := e.IsSuccessful()
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if e.shape == ShapeExceptional {
		return pkgerrors.New(pkgerrors.CodeInvalidState, "response is an exceptional response")
	}
	code, codeErr := intFromAny(e.payload[KeyResponseCode])
	message, _ := stringFromAny(e.payload[KeyResponseMessage])
	switch {
	case codeErr == nil && message != "":
		return pkgerrors.New(pkgerrors.CodeInvalidState, fmt.Sprintf("response is not successful (code %d: %s)", code, message))
	case codeErr == nil:
		return pkgerrors.New(pkgerrors.CodeInvalidState, fmt.Sprintf("response is not successful (code %d)", code))
	default:
		return pkgerrors.New(pkgerrors.CodeInvalidState, "response is not successful")
	}
}

func hasKey(data map[string]any, key string) bool {
	_, ok := data[key]
	return ok
}

// truthy mirrors loose success-flag semantics: booleans count as themselves,
// numbers as non-zero, strings via strconv.ParseBool, everything else as
// false.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		return err == nil && parsed
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

func intFromAny(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("value %v is not numeric", value)
	}
}

func int64FromAny(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("value %v is not numeric", value)
	}
}

func stringFromAny(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}
