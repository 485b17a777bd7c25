package stores

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// Subscriber returns an event subscriber that records root and commit
// events in the journal. Write failures are logged and otherwise ignored.
func (j *Journal) Subscriber(ctx context.Context, logger zerolog.Logger) telemetry.EventSubscriber {
	logger = logger.With().Str("component", "journal").Logger()
	return func(e telemetry.Event) {
		if err := j.Record(ctx, e); err != nil {
			logger.Error().Err(err).
				Str("event_type", e.Type).
				Str("root_id", e.RootID).
				Msg("Failed to journal event")
		}
	}
}

// JournalFilter selects the events Record understands.
func JournalFilter() telemetry.EventFilter {
	return telemetry.FilterByType(
		telemetry.EventTypeRootConfigured,
		telemetry.EventTypeRootUnmounted,
		telemetry.EventTypeCommitApplied,
		telemetry.EventTypeCommitFailed,
	)
}

// Record writes one event. Events of other types are ignored.
func (j *Journal) Record(ctx context.Context, e telemetry.Event) error {
	switch e.Type {
	case telemetry.EventTypeRootConfigured:
		return j.RecordRoot(ctx, RootRecord{
			ID:           e.RootID,
			Target:       stringField(e, "target"),
			DeckID:       stringField(e, "deck_id"),
			ConfiguredAt: e.Timestamp,
		})

	case telemetry.EventTypeRootUnmounted:
		commits, _ := e.Data["commits"].(int)
		return j.FinalizeRoot(ctx, e.RootID, commits, e.Timestamp)

	case telemetry.EventTypeCommitApplied:
		seconds, _ := e.Data["duration"].(float64)
		return j.RecordCommit(ctx, CommitRecord{
			ID:        e.CommitID,
			RootID:    e.RootID,
			Status:    CommitStatusApplied,
			Views:     stringsField(e, "views"),
			Layers:    stringsField(e, "layers"),
			Duration:  time.Duration(seconds * float64(time.Second)),
			CreatedAt: e.Timestamp,
		})

	case telemetry.EventTypeCommitFailed:
		return j.RecordCommit(ctx, CommitRecord{
			ID:        e.CommitID,
			RootID:    e.RootID,
			Status:    CommitStatusFailed,
			Code:      stringField(e, "code"),
			Reason:    stringField(e, "reason"),
			CreatedAt: e.Timestamp,
		})
	}
	return nil
}

func stringField(e telemetry.Event, key string) string {
	s, _ := e.Data[key].(string)
	return s
}

func stringsField(e telemetry.Event, key string) []string {
	switch v := e.Data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
