package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/appdeck/internal/model"
)

// Catalog is the read side of store.Store needed for an export.
type Catalog interface {
	ListApplications(ctx context.Context) ([]*model.Application, error)
	ListEntries(ctx context.Context, kind model.EntryKind) ([]model.Entry, error)
}

// entryKinds is the order entry lists appear in an export.
var entryKinds = []model.EntryKind{
	model.KindComponent,
	model.KindSubstitute,
	model.KindIngressAnnotation,
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version          string    `json:"version"`
	Type             string    `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	ApplicationCount int       `json:"application_count"`
	EntryCount       int       `json:"entry_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes the whole catalog as JSONL to w: a header, then every
// application sorted by namespace and name, then the component, substitute
// and ingress annotation entries in list order.
func ExportJSONL(ctx context.Context, c Catalog, w io.Writer) error {
	apps, err := c.ListApplications(ctx)
	if err != nil {
		return fmt.Errorf("list applications: %w", err)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Namespace != apps[j].Namespace {
			return apps[i].Namespace < apps[j].Namespace
		}
		return apps[i].Name < apps[j].Name
	})

	entries := make(map[model.EntryKind][]model.Entry, len(entryKinds))
	entryCount := 0
	for _, kind := range entryKinds {
		list, err := c.ListEntries(ctx, kind)
		if err != nil {
			return fmt.Errorf("list %s entries: %w", kind, err)
		}
		entries[kind] = list
		entryCount += len(list)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:          "1",
		Type:             "header",
		Timestamp:        time.Now().UTC(),
		ApplicationCount: len(apps),
		EntryCount:       entryCount,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, a := range apps {
		if err := enc.Encode(record{Type: "application", Data: a}); err != nil {
			return fmt.Errorf("encode application %s/%s: %w", a.Namespace, a.Name, err)
		}
	}

	for _, kind := range entryKinds {
		for _, e := range entries[kind] {
			if err := enc.Encode(record{Type: kind.String(), Data: e}); err != nil {
				return fmt.Errorf("encode %s %s: %w", kind, e.Name, err)
			}
		}
	}

	return nil
}
