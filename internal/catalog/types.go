// Package catalog is the persistent relational store of files, runs,
// extractions, labels, and plans. It is the one shared mutable resource in
// the pipeline; every phase reads and writes it under short transactions.
package catalog

import "encoding/json"

// RunType identifies which pipeline phase produced a Run.
type RunType string

const (
	RunScan    RunType = "scan"
	RunExtract RunType = "extract"
	RunLabel   RunType = "label"
	RunPlan    RunType = "plan"
)

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run represents one invocation of one pipeline phase. Every row produced by
// another entity cites the run that produced it, giving full provenance.
type Run struct {
	ID          int64
	Type        RunType
	Config      json.RawMessage
	StartedAt   int64
	CompletedAt *int64
	Status      RunStatus
	Error       *string
}

// ExtractionStatus is the outcome of one extraction attempt.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionFailed  ExtractionStatus = "failed"
	ExtractionSkipped ExtractionStatus = "skipped"
)

// File is an archived source file discovered by a scan run. Digest is
// recomputed on every scan and may change; path is unique.
type File struct {
	ID        int64
	Path      string
	Digest    string
	Size      int64
	MimeType  string
	Mtime     int64
	Ctime     int64
	ScanRunID int64
	CreatedAt int64
}

// Extraction is one attempt to derive text from a File under a given
// extraction run. At most one row exists per (FileID, ExtractionRunID).
type Extraction struct {
	ID              int64
	FileID          int64
	Method          string
	Status          ExtractionStatus
	SidecarPath     *string
	Error           *string
	ExtractionRunID int64
	CreatedAt       int64
}

// Label is a classification produced for a File. At most one row exists per
// (FileID, LabelingRunID).
type Label struct {
	ID               int64
	FileID           int64
	DocType          string
	Title            string
	CanonicalName    string
	SuggestedTags    []string
	TargetGroupPath  string
	Date             *string
	Issuer           *string
	Source           *string
	Confidence       float64
	Explanation      string
	ModelName        string
	PromptVersion    string
	LabelingRunID    int64
	CreatedAt        int64
}

// PlanOperation is how a Plan row should be materialized.
type PlanOperation string

const (
	OpCopy     PlanOperation = "copy"
	OpHardlink PlanOperation = "hardlink"
)

// Plan is a proposed materialization of a labeled File into the staging tree.
type Plan struct {
	ID              int64
	FileID          int64
	LabelID         int64
	Operation       PlanOperation
	SourcePath      string
	TargetPath      string
	TargetFilename  string
	Tags            []string
	NeedsReview     bool
	PlanRunID       int64
	CreatedAt       int64
}

// WorkItem is the row shape returned by the work-queue queries: just enough
// to dispatch a task without a second round trip.
type WorkItem struct {
	FileID        int64
	Path          string
	Digest        string
	Size          int64
	MimeType      string
	Mtime         int64
	SidecarPath   string // "" if the labeling queue found no sidecar
	ExtractMethod string
}

// ExtractionStats summarizes extraction outcomes, optionally scoped to a run.
type ExtractionStats struct {
	Success int
	Failed  int
	Skipped int
}

// LabelingStats summarizes labeling outcomes, optionally scoped to a run.
type LabelingStats struct {
	Total         int
	ByDocType     map[string]int
	ByModel       map[string]int
	AvgConfidence float64
	MinConfidence float64
	MaxConfidence float64
	LowConfidence int
}

// Stats is the top-level summary returned by the `stats` CLI command.
type Stats struct {
	TotalFiles       int
	TotalExtractions int
	TotalLabels      int
	TotalPlans       int
	TotalRuns        int
	RunsByType       map[string]int
}
