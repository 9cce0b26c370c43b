package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Recoverable bool `json:"recoverable"`

	Chain []string `json:"chain,omitempty"`

	MissingKeys []string `json:"missing_keys,omitempty"`
}

// Dump flattens an error into a log-friendly structure: the typed code, the
// unwrap chain, and the ordered missing-key list when the error is a
// malformed-response validation failure.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Recoverable = MetadataFor(te.Code()).Recoverable
		if keys, ok := te.Details().([]string); ok {
			d.MissingKeys = keys
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	return d
}
