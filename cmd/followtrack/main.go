package main

import (
	"followtrack-backend/cmd/followtrack/commands"
	"followtrack-backend/lib/serviceutil"
	"followtrack-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "followtrack")
	defer telemetry.Shutdown(ctx)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
