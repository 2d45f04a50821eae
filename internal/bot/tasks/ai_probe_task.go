package tasks

import (
	"context"
	"time"
)

const probeTimeout = 30 * time.Second

// newAIProbeTask creates the periodic Gemini connectivity probe. The result
// is recorded on the health monitor for the /health and /ready endpoints and
// the /status command; a failed probe is logged, never escalated.
func newAIProbeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "ai_probe")

	return func(ctx context.Context) error {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		startTime := time.Now()
		err := deps.GeminiClient.CheckConnection(probeCtx)
		duration := time.Since(startTime)

		deps.Health.RecordAIProbe(err == nil)

		if err != nil {
			log.WarnContext(ctx, "AI connectivity probe failed", "error", err, "duration", duration)
			return nil
		}

		log.DebugContext(ctx, "AI connectivity probe succeeded", "duration", duration)
		return nil
	}
}
