package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mwestergaard/slrpipe/internal/artifacts"
	"github.com/mwestergaard/slrpipe/internal/chunker"
	"github.com/mwestergaard/slrpipe/internal/layout"
	"github.com/mwestergaard/slrpipe/internal/structure"
	"github.com/mwestergaard/slrpipe/internal/summary"
	"github.com/mwestergaard/slrpipe/internal/vectorstore"
)

// Worker processes a single document job: structural analysis, positional
// segmentation, chunking, embedding, map-reduce summarisation, artifact
// persistence.
type Worker struct {
	jobs     *JobStore
	vs       *vectorstore.Client
	art      *artifacts.Client
	agg      *summary.Aggregator
	log      *slog.Logger
	chunkCfg chunker.Config
	counter  chunker.TokenCounter
}

func NewWorker(jobs *JobStore, vs *vectorstore.Client, art *artifacts.Client, agg *summary.Aggregator, counter chunker.TokenCounter, chunkCfg chunker.Config, log *slog.Logger) *Worker {
	return &Worker{
		jobs:     jobs,
		vs:       vs,
		art:      art,
		agg:      agg,
		log:      log,
		chunkCfg: chunkCfg,
		counter:  counter,
	}
}

// Process runs the full ingest pipeline for a job. A document whose summary
// fails still completes as partial with a placeholder artifact: its
// fragments are already searchable and downstream review operations must
// not lose the document.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: structural analysis.
	job.SetStatus(StatusAnalyzing, "layout")
	reader, err := layout.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "layout")
		return
	}

	doc, err := reader.Read(bytes.NewReader(job.FileData()), job.DocID)
	job.ReleaseFileData()
	if err != nil {
		log.Error("layout analysis failed", "error", err)
		job.AddError(fmt.Sprintf("layout: %s", err))
		job.SetStatus(StatusFailed, "layout")
		return
	}

	titles, mainTitle := structure.ExtractTitles(doc)
	if job.Title != "" {
		// An explicit upload title wins over the detected one.
		mainTitle = job.Title
	}
	job.SetTitle(mainTitle)
	log.Info("structural analysis complete", "confirmed_titles", len(titles), "main_title", mainTitle)

	job.SetStatus(StatusAnalyzing, "segmentation")
	fullText, sections := structure.Segment(doc.Elements, titles)
	if fullText == "" {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "segmentation")
		return
	}
	job.SetSections(len(sections))

	// Dedup on the cleaned text, not the raw bytes, so a re-exported file
	// with identical content is still recognised.
	hash := ContentHashHex([]byte(fullText))
	job.SetContentHash(hash)
	if dup := w.jobs.FindByHash(hash); dup != nil && dup.ID != job.ID {
		log.Info("duplicate document, skipping", "existing_doc_id", dup.DocID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 2: chunking.
	job.SetStatus(StatusChunking, "chunking")
	ck := chunker.New(w.counter, w.jobChunkConfig(job))
	fragments := ck.ChunkSections(sections, job.DocID, mainTitle)
	if len(fragments) == 0 {
		fragments = ck.ChunkFullDocument(fullText, job.DocID, mainTitle)
	}
	job.SetTotalFragments(len(fragments))
	log.Info("chunked document", "fragments", len(fragments))

	if len(fragments) == 0 {
		job.AddError("no fragments produced")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: embedding writes.
	job.SetStatus(StatusEmbedding, "embedding")
	hadErrors := false
	if err := w.vs.AddFragments(ctx, fragments); err != nil {
		log.Error("embedding write failed", "error", err)
		job.AddError(fmt.Sprintf("embed: %s", err))
		hadErrors = true
	} else {
		job.SetFragmentsEmbedded(len(fragments))
	}

	// Phase 4: map-reduce summarisation.
	job.SetStatus(StatusSummarizing, "summarizing")
	artifact, err := w.agg.Aggregate(ctx, fragments)
	if err != nil || summary.IsEmptyArtifact(artifact) {
		if err != nil {
			log.Error("summarisation failed", "error", err)
			job.AddError(fmt.Sprintf("summarize: %s", err))
		} else {
			log.Warn("summary artifact is empty")
			job.AddError("summary artifact is empty")
		}
		artifact = summary.Placeholder
		hadErrors = true
	}

	if err := w.art.PutSummary(ctx, job.DocID, artifact); err != nil {
		log.Error("summary persistence failed", "error", err)
		job.AddError(fmt.Sprintf("persist summary: %s", err))
		hadErrors = true
	} else {
		job.SetSummaryStored()
	}

	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
	log.Info("ingestion finished", "status", job.Snapshot().Status)
}

func (w *Worker) jobChunkConfig(job *Job) chunker.Config {
	cfg := w.chunkCfg
	if job.ChunkSize > 0 {
		cfg.ChunkSize = job.ChunkSize
	}
	if job.ChunkOverlap > 0 {
		cfg.Overlap = job.ChunkOverlap
	}
	return cfg
}
