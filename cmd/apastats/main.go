package main

import (
	"context"
	"log/slog"

	"apastats/cmd/apastats/commands"
	"apastats/lib/serviceutil"
	"apastats/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "apastats")
	if err != nil {
		slog.Warn("telemetry setup failed", "err", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)

	commands.ExecuteContext(ctx)
}
