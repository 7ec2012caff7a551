// Package submitter pushes a finished batch into Google Forms style
// collection endpoints. Every source submits independently so one
// unreachable form never blocks the rest of the batch.
package submitter

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/retry"
	"followtrack-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("followtrack.services.submitter")

// NotFoundSentinel is submitted in place of a value for sources whose
// extraction failed, so the sheet shows the gap instead of silence.
const NotFoundSentinel = "Not Found"

const defaultMaxAttempts = 3

// Status of one source's submission.
type Status int

const (
	// StatusAccepted means the endpoint took the value.
	StatusAccepted Status = iota
	// StatusRejected means the endpoint answered and refused.
	StatusRejected
	// StatusNotAttempted means the value never reached the endpoint:
	// no field mapping, or transport failures exhausted every attempt.
	StatusNotAttempted
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusNotAttempted:
		return "not attempted"
	}
	return "unknown"
}

// Ack records the submission outcome for one source.
type Ack struct {
	Source string
	Status Status
	Reason string
}

// Outcome holds one ack per batch result, in batch order.
type Outcome struct {
	RunID string
	Acks  []Ack
}

// Form maps sources to the entry field IDs of one collection form.
type Form struct {
	Name string
	URL  string
	// Fields maps source name to the form's entry ID, e.g.
	// "linkedin:profile" -> "entry.1442963898".
	Fields map[string]string
}

type Options struct {
	Forms []Form
	// MaxAttempts bounds transport retries per source. Defaults to 3.
	MaxAttempts int
	Backoff     retry.Config
	Seed        int64
}

type Service struct {
	client  *resty.Client
	options Options
}

func NewService(options Options) *Service {
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = defaultMaxAttempts
	}
	client := resty.New()
	telemetry.InstrumentResty(client, "followtrack.services.submitter")
	return &Service{client: client, options: options}
}

// Submit pushes every batch result to its mapped form and returns one
// ack per result, in batch order. Failed extractions still submit,
// carrying the not-found sentinel.
func (s *Service) Submit(ctx context.Context, batch extract.Batch) Outcome {
	ctx, span := tracer.Start(ctx, "submitter:Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", batch.RunID),
		attribute.Int("batch.size", len(batch.Results)),
	)

	rng := rand.New(rand.NewSource(s.options.Seed))
	outcome := Outcome{RunID: batch.RunID, Acks: make([]Ack, len(batch.Results))}
	for i, result := range batch.Results {
		outcome.Acks[i] = s.submitOne(ctx, result, rng)
		slog.InfoContext(
			ctx, "submission ack",
			"run_id", batch.RunID,
			"source", outcome.Acks[i].Source,
			"status", outcome.Acks[i].Status.String(),
			"reason", outcome.Acks[i].Reason,
		)
	}

	rejected := 0
	for _, ack := range outcome.Acks {
		if ack.Status != StatusAccepted {
			rejected++
		}
	}
	if rejected > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d submissions not accepted", rejected))
	}
	return outcome
}

func (s *Service) submitOne(ctx context.Context, result extract.Result, rng *rand.Rand) Ack {
	form, entryID, ok := s.fieldFor(result.Source)
	if !ok {
		return Ack{
			Source: result.Source,
			Status: StatusNotAttempted,
			Reason: "no form field mapping",
		}
	}

	value := NotFoundSentinel
	if result.Succeeded() {
		value = strconv.FormatInt(result.Value, 10)
	}

	// error statuses go through the retry loop like transport errors;
	// the terminal status depends on how the final attempt failed
	var lastResp *resty.Response
	err := retry.Do(ctx, s.options.MaxAttempts, s.options.Backoff, rng, nil,
		func(ctx context.Context) error {
			resp, err := s.client.R().
				SetContext(ctx).
				SetFormData(map[string]string{entryID: value}).
				Post(form.URL)
			if err != nil {
				lastResp = nil
				return err
			}
			lastResp = resp
			if resp.IsError() {
				return fmt.Errorf("form %q answered %s", form.Name, resp.Status())
			}
			return nil
		})
	if err != nil {
		if lastResp != nil && lastResp.IsError() {
			return Ack{
				Source: result.Source,
				Status: StatusRejected,
				Reason: err.Error(),
			}
		}
		return Ack{
			Source: result.Source,
			Status: StatusNotAttempted,
			Reason: fmt.Sprintf("form %q unreachable: %s", form.Name, err),
		}
	}
	return Ack{Source: result.Source, Status: StatusAccepted}
}

func (s *Service) fieldFor(source string) (Form, string, bool) {
	for _, form := range s.options.Forms {
		if entryID, ok := form.Fields[source]; ok {
			return form, entryID, true
		}
	}
	return Form{}, "", false
}
