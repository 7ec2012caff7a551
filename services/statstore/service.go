// Package statstore persists run history so count trends survive
// individual runs and missed submissions can be backfilled.
package statstore

import (
	"context"
	"database/sql"
	"time"

	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/telemetry"
	"followtrack-backend/services/submitter"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("followtrack.services.statstore")

type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) Service {
	return Service{db: database}
}

// Record is one source's history row.
type Record struct {
	RunID        string
	Source       string
	Value        sql.NullInt64
	CapturedAt   time.Time
	Attempts     int
	FailureKind  string
	SubmitStatus string
}

// Push writes a whole run, batch plus submission acks, in one
// transaction. outcome may be zero-valued when submission was skipped.
func (s Service) Push(ctx context.Context, batch extract.Batch, outcome submitter.Outcome) error {
	ctx, span := tracer.Start(ctx, "Push")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", batch.RunID),
		attribute.Int("batch.size", len(batch.Results)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		batch.RunID, batch.StartedAt.Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	for i, result := range batch.Results {
		var value, capturedAt sql.NullInt64
		var failureKind, failureMessage sql.NullString
		if result.Succeeded() {
			value = sql.NullInt64{Int64: result.Value, Valid: true}
			capturedAt = sql.NullInt64{Int64: result.CapturedAt.Unix(), Valid: true}
		} else {
			failureKind = sql.NullString{String: result.Failure.Kind.String(), Valid: true}
			failureMessage = sql.NullString{String: result.Failure.Message, Valid: true}
		}

		var submitStatus, submitReason sql.NullString
		if i < len(outcome.Acks) {
			submitStatus = sql.NullString{String: outcome.Acks[i].Status.String(), Valid: true}
			submitReason = sql.NullString{String: outcome.Acks[i].Reason, Valid: outcome.Acks[i].Reason != ""}
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO records (
				run_id, position, source, value, captured_at, attempts,
				failure_kind, failure_message, submit_status, submit_reason
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.RunID, i, result.Source, value, capturedAt, result.Attempts,
			failureKind, failureMessage, submitStatus, submitReason,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Pull returns a source's history, oldest first.
func (s Service) Pull(ctx context.Context, source string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "Pull")
	defer span.End()
	span.SetAttributes(attribute.String("source", source))

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT r.run_id, r.source, r.value, r.captured_at, r.attempts,
			r.failure_kind, r.submit_status
		FROM records r
		INNER JOIN runs ON runs.id = r.run_id
		WHERE r.source = ?
		ORDER BY runs.started_at ASC, r.position ASC`,
		source,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var capturedAt sql.NullInt64
		var failureKind, submitStatus sql.NullString
		err := rows.Scan(
			&record.RunID, &record.Source, &record.Value, &capturedAt,
			&record.Attempts, &failureKind, &submitStatus,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if capturedAt.Valid {
			record.CapturedAt = time.Unix(capturedAt.Int64, 0).UTC()
		}
		record.FailureKind = failureKind.String
		record.SubmitStatus = submitStatus.String
		records = append(records, record)
	}
	err = rows.Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return records, nil
}
