// Package seed provides demo data for a fresh form store.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/schemafile"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

//go:embed sample.yaml
var sampleYAML []byte

// SampleName is the name of the seeded form.
const SampleName = "Graduate admissions"

// SampleSchema returns the demo application form.
func SampleSchema() (types.Schema, error) {
	return schemafile.Decode(sampleYAML, schemafile.FormatYAML)
}

// SeedSampleForm stores the demo form if the store holds no forms yet.
// rec may be nil.
func SeedSampleForm(ctx context.Context, forms store.Store, rec event.Recorder) error {
	existing, err := forms.List(ctx, store.ListOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("checking forms: %w", err)
	}
	if len(existing) > 0 {
		log.Info("forms already present, skipping seed", "count", len(existing))
		return nil
	}

	schema, err := SampleSchema()
	if err != nil {
		return fmt.Errorf("decoding sample form: %w", err)
	}
	doc, err := forms.Create(ctx, store.FormDocument{
		Name:   SampleName,
		Owner:  "system",
		Schema: schema,
	})
	if err != nil {
		return fmt.Errorf("creating sample form: %w", err)
	}

	if rec != nil {
		evt := event.NewFormCreated(event.FormPayload{FormID: doc.ID, Name: doc.Name, Version: doc.Version, Fields: len(doc.Schema.Fields)})
		evt.Actor = "system"
		if err := rec.Record(ctx, evt); err != nil {
			return fmt.Errorf("recording seed: %w", err)
		}
	}
	log.Info("seeded sample form", "id", doc.ID, "fields", len(doc.Schema.Fields))
	return nil
}
