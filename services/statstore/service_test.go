package statstore

import (
	"context"
	"testing"
	"time"

	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/testutil"
	"followtrack-backend/services/statstore/db"
	"followtrack-backend/services/submitter"

	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) Service {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "statstore",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	return NewService(res.DB)
}

func TestPushPull(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	capturedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	batch := extract.Batch{
		RunID:     "run-1",
		StartedAt: capturedAt.Add(-time.Minute),
		Results: []extract.Result{
			{Source: "linkedin:profile", Value: 2512, CapturedAt: capturedAt, Attempts: 2},
			{
				Source:   "instagram:account",
				Attempts: 3,
				Failure:  extract.Failf(extract.KindBlockedOrAuthWall, "login wall"),
			},
		},
	}
	outcome := submitter.Outcome{
		RunID: "run-1",
		Acks: []submitter.Ack{
			{Source: "linkedin:profile", Status: submitter.StatusAccepted},
			{Source: "instagram:account", Status: submitter.StatusRejected, Reason: "bad value"},
		},
	}
	require.NoError(t, svc.Push(ctx, batch, outcome))

	records, err := svc.Pull(ctx, "linkedin:profile")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "run-1", records[0].RunID)
	require.True(t, records[0].Value.Valid)
	require.Equal(t, int64(2512), records[0].Value.Int64)
	require.Equal(t, capturedAt, records[0].CapturedAt)
	require.Equal(t, 2, records[0].Attempts)
	require.Equal(t, "accepted", records[0].SubmitStatus)

	records, err = svc.Pull(ctx, "instagram:account")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.False(t, records[0].Value.Valid)
	require.Equal(t, "blocked_or_auth_wall", records[0].FailureKind)
	require.Equal(t, "rejected", records[0].SubmitStatus)
}

func TestPullOrdersHistoryByRunStart(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, value := range []int64{100, 150, 140} {
		batch := extract.Batch{
			RunID:     []string{"run-a", "run-b", "run-c"}[i],
			StartedAt: base.AddDate(0, 0, 7*i),
			Results: []extract.Result{
				{Source: "kit:weekly", Value: value, CapturedAt: base.AddDate(0, 0, 7*i), Attempts: 1},
			},
		}
		require.NoError(t, svc.Push(ctx, batch, submitter.Outcome{}))
	}

	records, err := svc.Pull(ctx, "kit:weekly")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, want := range []int64{100, 150, 140} {
		require.Equal(t, want, records[i].Value.Int64)
		require.Empty(t, records[i].SubmitStatus)
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	batch := extract.Batch{RunID: "run-x", StartedAt: time.Now().UTC()}
	require.NoError(t, svc.Push(ctx, batch, submitter.Outcome{}))
	require.Error(t, svc.Push(ctx, batch, submitter.Outcome{}))
}
