package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/openfroyo/deckfiber/pkg/telemetry"
)

// Example_commitEvents subscribes to commit events with synchronous
// delivery.
func Example_commitEvents() {
	tel, err := telemetry.NewTelemetry(telemetry.TestingConfig())
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	tel.Events.Subscribe(func(e telemetry.Event) {
		fmt.Println(e.Type, e.Data["layers"])
	}, telemetry.FilterByType(telemetry.EventTypeCommitApplied))

	_ = tel.Events.PublishRootConfigured("root-1", "map", "deck-1")
	_ = tel.Events.PublishCommitApplied("root-1", "commit-1", []string{"main"}, []string{"roads", "poi"}, time.Millisecond)
	// Output: commit.applied [roads poi]
}

// Example_instrumentedOperation wraps an operation in a span and a timer.
func Example_instrumentedOperation() {
	tel, _ := telemetry.NewTelemetry(telemetry.TestingConfig())
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())
	op := telemetry.StartOperation(ctx, "root.render", telemetry.AttrRootID.String("root-1"))
	op.Logger.Debug("Rendering")
	op.End(nil)

	fmt.Println(op.Timer.Duration() >= 0)
	// Output: true
}
