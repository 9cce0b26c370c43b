// Package inspect runs response bodies through envelope validation and
// aggregates the verdicts into a report. It performs no network calls; inputs
// are files, streams, or raw bodies handed in by the caller.
package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	pkgerrors "github.com/etki/mvno-api-client/pkg/errors"
	"github.com/etki/mvno-api-client/pkg/logger"
	"github.com/etki/mvno-api-client/pkg/metrics"
	"github.com/etki/mvno-api-client/pkg/response"
)

// DefaultMaxBodyBytes caps how much of an input body is accepted.
const DefaultMaxBodyBytes = 1 << 20

// Params configures the inspection service.
type Params struct {
	Logger       *logger.Logger
	Metrics      *metrics.ParseMetrics
	FailFast     bool
	MaxBodyBytes int64
	Now          func() time.Time
	NewID        func() string
}

// Service inspects response bodies one at a time.
type Service struct {
	logger       *logger.Logger
	metrics      *metrics.ParseMetrics
	failFast     bool
	maxBodyBytes int64
	now          func() time.Time
	newID        func() string
}

// New builds the inspection service.
func New(params Params) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.NewID == nil {
		params.NewID = uuid.NewString
	}
	if params.MaxBodyBytes <= 0 {
		params.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Service{
		logger:       params.Logger,
		metrics:      params.Metrics,
		failFast:     params.FailFast,
		maxBodyBytes: params.MaxBodyBytes,
		now:          params.Now,
		newID:        params.NewID,
	}, nil
}

// Verdict is the outcome of inspecting a single body.
type Verdict struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Shape       string   `json:"shape,omitempty"`
	Successful  bool     `json:"successful"`
	Code        *int     `json:"code,omitempty"`
	Message     string   `json:"message,omitempty"`
	Timestamp   *int64   `json:"timestamp,omitempty"`
	DateTime    string   `json:"datetime,omitempty"`
	Exception   string   `json:"exception,omitempty"`
	Fault       string   `json:"fault,omitempty"`
	Error       string   `json:"error,omitempty"`
	ErrorCode   string   `json:"error_code,omitempty"`
	MissingKeys []string `json:"missing_keys,omitempty"`
}

// Report aggregates verdicts across a batch of inputs.
type Report struct {
	Processed   int       `json:"processed"`
	Standard    int       `json:"standard"`
	Exceptional int       `json:"exceptional"`
	Rejected    int       `json:"rejected"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Verdicts    []Verdict `json:"verdicts"`
}

func (r *Report) add(v Verdict) {
	r.Processed++
	r.Verdicts = append(r.Verdicts, v)
	switch {
	case v.Error != "":
		r.Rejected++
	case v.Shape == response.ShapeExceptional.String():
		r.Exceptional++
	default:
		r.Standard++
	}
}

// InspectBody validates a single raw body and returns its verdict. The
// returned error mirrors the verdict's rejection, so callers can either
// branch on the error or consume the verdict as data.
func (s *Service) InspectBody(ctx context.Context, source string, body []byte) (Verdict, error) {
	start := s.now()
	verdict := Verdict{ID: s.newID(), Source: source}

	ctx = s.logger.WithRequestID(ctx, verdict.ID)
	ctx = s.logger.WithSource(ctx, source)

	if int64(len(body)) > s.maxBodyBytes {
		err := pkgerrors.New(pkgerrors.CodeDecodeFailure, fmt.Sprintf("body exceeds %d bytes", s.maxBodyBytes))
		return s.reject(ctx, verdict, start, err), err
	}

	env, err := response.FromJSON(body)
	if err != nil {
		return s.reject(ctx, verdict, start, err), err
	}

	verdict.Shape = env.Shape().String()
	if env.Shape() == response.ShapeExceptional {
		view, viewErr := env.AsExceptional()
		if viewErr != nil {
			return s.reject(ctx, verdict, start, viewErr), viewErr
		}
		verdict.Exception = view.Cause
		verdict.Fault = string(view.Source)
	} else {
		view, viewErr := env.AsStandard()
		if viewErr != nil {
			return s.reject(ctx, verdict, start, viewErr), viewErr
		}
		verdict.Successful = view.Succeeded
		verdict.Code = &view.Code
		verdict.Timestamp = &view.Timestamp
		verdict.Message = view.Message
		if view.Succeeded {
			if dt, dtErr := env.DateTime(); dtErr == nil {
				verdict.DateTime = dt.Format(time.RFC3339)
			}
		}
	}

	s.metrics.IncParsed(verdict.Shape)
	s.metrics.ObserveDuration("parsed", s.now().Sub(start))
	s.logger.Info(ctx, "response inspected")
	return verdict, nil
}

func (s *Service) reject(ctx context.Context, verdict Verdict, start time.Time, err error) Verdict {
	dump := pkgerrors.Dump(err)
	verdict.Error = err.Error()
	verdict.ErrorCode = string(dump.Code)
	verdict.MissingKeys = dump.MissingKeys

	reason := "decode"
	if dump.Code == pkgerrors.CodeMalformedResponse {
		reason = "malformed"
	}
	s.metrics.IncRejected(reason)
	s.metrics.ObserveDuration("rejected", s.now().Sub(start))

	ctx = s.logger.WithFields(ctx, map[string]any{
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
	})
	if len(dump.MissingKeys) > 0 {
		ctx = s.logger.WithField(ctx, "missing_keys", dump.MissingKeys)
	}
	s.logger.Error(ctx, "response rejected", err)
	return verdict
}

// InspectFile reads and inspects a single file.
func (s *Service) InspectFile(ctx context.Context, path string) (Verdict, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Verdict{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.InspectBody(ctx, path, body)
}

// InspectStream drains a reader and inspects the result. Reads are capped
// just past the body limit so oversized streams are rejected rather than
// buffered whole.
func (s *Service) InspectStream(ctx context.Context, source string, r io.Reader) (Verdict, error) {
	body, err := io.ReadAll(io.LimitReader(r, s.maxBodyBytes+1))
	if err != nil {
		return Verdict{}, fmt.Errorf("reading %s: %w", source, err)
	}
	return s.InspectBody(ctx, source, body)
}

// InspectAll inspects every path, tallying verdicts into a report. Rejected
// bodies are recorded and collected into the combined error; with FailFast
// set, the batch stops at the first rejection.
func (s *Service) InspectAll(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{StartedAt: s.now().UTC()}
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		verdict, err := s.InspectFile(ctx, path)
		if err != nil {
			errs = append(errs, err)
			if verdict.ID != "" {
				report.add(verdict)
			}
			if s.failFast {
				break
			}
			continue
		}
		report.add(verdict)
	}

	report.FinishedAt = s.now().UTC()
	return report, multierr.Combine(errs...)
}
