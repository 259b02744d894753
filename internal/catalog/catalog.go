// Package catalog implements the published-table domain: listing and reading
// KPI collections from the store and resolving their ingestion freshness.
package catalog

import "time"

// Metadata is the provenance record attached to each published collection.
type Metadata struct {
	Collection   string     `json:"collection"`
	IngestTime   time.Time  `json:"ingest_time"`
	ObjectName   string     `json:"object_name"`
	LastModified *time.Time `json:"last_modified"`
}

// Freshness reports the time lag between source mutation, ingestion, and now.
// Deltas are in seconds and absent when an input timestamp is absent.
type Freshness struct {
	Collection          string   `json:"collection"`
	SourceLastModified  *string  `json:"source_last_modified"`
	IngestTime          string   `json:"ingest_time"`
	ObjectName          string   `json:"object_name"`
	DeltaSourceToIngest *float64 `json:"delta_source_to_ingest_seconds"`
	DeltaIngestToNow    *float64 `json:"delta_ingest_to_now_seconds"`
}

// ResolveFreshness computes freshness deltas from a metadata record. All
// timestamps are normalized to UTC before subtraction.
func ResolveFreshness(meta Metadata, now time.Time) Freshness {
	ingest := meta.IngestTime.UTC()

	f := Freshness{
		Collection: meta.Collection,
		IngestTime: ingest.Format(time.RFC3339),
		ObjectName: meta.ObjectName,
	}

	if meta.LastModified != nil {
		source := meta.LastModified.UTC()
		formatted := source.Format(time.RFC3339)
		f.SourceLastModified = &formatted

		delta := ingest.Sub(source).Seconds()
		f.DeltaSourceToIngest = &delta
	}

	deltaNow := now.UTC().Sub(ingest).Seconds()
	f.DeltaIngestToNow = &deltaNow

	return f
}
