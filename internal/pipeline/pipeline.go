// Package pipeline runs the document-to-answer flow: acquisition,
// normalization, chunking (cached per fingerprint), concurrent question
// answering, and session persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MileWhile/Auramax/internal/acquire"
	"github.com/MileWhile/Auramax/internal/cache"
	"github.com/MileWhile/Auramax/internal/chunker"
	"github.com/MileWhile/Auramax/internal/config"
	"github.com/MileWhile/Auramax/internal/llm"
	"github.com/MileWhile/Auramax/internal/normalize"
	"github.com/MileWhile/Auramax/internal/session"
)

// SourceType tags where the document came from.
type SourceType string

const (
	SourceURL    SourceType = "url"
	SourceUpload SourceType = "upload"
)

// Request is one processing request: a document source and a question batch.
// For uploads the handler has already read and validated the bytes.
type Request struct {
	SourceType SourceType
	URL        string
	Upload     *acquire.Result
	Questions  []string
}

// Metadata is the processing metadata block of a response.
type Metadata struct {
	SessionID      string `json:"session_id"`
	DocumentName   string `json:"document_name"`
	DocumentChunks int    `json:"document_chunks"`
	ModelUsed      string `json:"model_used"`
	TotalQuestions int    `json:"total_questions"`
	SourceType     string `json:"source_type"`
}

// Response is the assembled pipeline output.
type Response struct {
	Answers        []string `json:"answers"`
	Metadata       Metadata `json:"metadata"`
	ProcessingTime float64  `json:"processing_time"`
	CacheHit       bool     `json:"cache_hit"`
	RequestID      string   `json:"request_id"`
}

// fallbackAnswer fills the answer slot for a failed question so the
// response always carries one answer per question.
const fallbackAnswer = "The answer to this question could not be generated due to a provider error."

// Pipeline wires the acquirer, normalizer, cache, provider, and session
// store into one request flow.
type Pipeline struct {
	cfg      config.Config
	acquirer *acquire.Acquirer
	cache    *cache.Cache
	store    session.Store
	provider llm.Provider
	log      *slog.Logger
}

func New(cfg config.Config, provider llm.Provider, store session.Store, log *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		acquirer: acquire.New(cfg.MaxUploadBytes, cfg.FetchTimeout),
		cache:    cache.New(),
		store:    store,
		provider: provider,
		log:      log,
	}
}

// Process runs one request end to end. Request-level failures return a
// *Error; per-question provider failures are isolated into answer slots.
func (p *Pipeline) Process(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := p.log.With("request_id", requestID)

	if err := p.validate(req); err != nil {
		return nil, err
	}

	fingerprint, err := p.fingerprint(req)
	if err != nil {
		return nil, validationError("invalid document url: %v", err)
	}

	entry, cacheHit, err := p.cache.GetOrCompute(fingerprint, func() (*cache.Entry, error) {
		// The computation may be shared with a concurrent request for
		// the same fingerprint; detach it from this request's cancel
		// so the survivor still gets a result.
		return p.prepare(context.WithoutCancel(ctx), req, log)
	})
	if err != nil {
		perr := classifyErr(err)
		log.Error("document preparation failed", "code", perr.Code, "error", err)
		return nil, perr
	}
	log.Info("document prepared",
		"fingerprint", fingerprint,
		"chunks", len(entry.Chunks),
		"native", entry.Native,
		"cache_hit", cacheHit,
	)

	sess := session.Session{
		SessionID:    uuid.NewString(),
		Fingerprint:  fingerprint,
		DocumentName: entry.DocumentName,
		Chunks:       entry.Chunks,
		CreatedAt:    time.Now().UTC(),
		ModelUsed:    p.provider.Model(),
	}
	if err := p.store.Put(ctx, sess); err != nil {
		log.Error("session put failed", "session_id", sess.SessionID, "error", err)
	}

	results := p.answer(ctx, entry, req.Questions, log)

	elapsed := time.Since(start).Seconds()
	rec := session.QARecord{
		SessionID:             sess.SessionID,
		Questions:             req.Questions,
		Answers:               results,
		Timestamp:             time.Now().UTC(),
		ProcessingTimeSeconds: elapsed,
	}
	if err := p.store.AppendQA(ctx, sess.SessionID, rec); err != nil {
		log.Error("qa append failed", "session_id", sess.SessionID, "error", err)
	}

	answers := make([]string, len(results))
	for i, r := range results {
		if r.AnswerText != nil {
			answers[i] = *r.AnswerText
		} else {
			answers[i] = fallbackAnswer
		}
	}

	return &Response{
		Answers: answers,
		Metadata: Metadata{
			SessionID:      sess.SessionID,
			DocumentName:   entry.DocumentName,
			DocumentChunks: len(entry.Chunks),
			ModelUsed:      p.provider.Model(),
			TotalQuestions: len(req.Questions),
			SourceType:     string(req.SourceType),
		},
		ProcessingTime: elapsed,
		CacheHit:       cacheHit,
		RequestID:      requestID,
	}, nil
}

// History returns the QA log for a session.
func (p *Pipeline) History(ctx context.Context, sessionID string) ([]session.QARecord, error) {
	return p.store.History(ctx, sessionID)
}

func (p *Pipeline) validate(req Request) *Error {
	if len(req.Questions) < 1 || len(req.Questions) > p.cfg.MaxQuestions {
		return validationError("question count %d out of bounds [1,%d]", len(req.Questions), p.cfg.MaxQuestions)
	}
	for i, q := range req.Questions {
		if q == "" {
			return validationError("question %d is empty", i)
		}
	}
	switch req.SourceType {
	case SourceURL:
		if req.URL == "" {
			return validationError("documents url is required")
		}
	case SourceUpload:
		if req.Upload == nil || len(req.Upload.Data) == 0 {
			return validationError("uploaded file is empty")
		}
	default:
		return validationError("unknown source type %q", req.SourceType)
	}
	return nil
}

func (p *Pipeline) fingerprint(req Request) (string, error) {
	if req.SourceType == SourceURL {
		return FingerprintURL(req.URL)
	}
	return FingerprintBytes(req.Upload.Data), nil
}

// prepare acquires (URL mode), normalizes, and chunks one document. It runs
// at most once per fingerprint thanks to the cache's single-flight.
func (p *Pipeline) prepare(ctx context.Context, req Request, log *slog.Logger) (*cache.Entry, error) {
	doc := req.Upload
	if req.SourceType == SourceURL {
		var err error
		doc, err = p.acquirer.FetchURL(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		log.Info("document acquired", "name", doc.Filename, "bytes", len(doc.Data), "mime", doc.MIME)
	}

	norm, err := normalize.Normalize(doc.Data, doc.Filename, doc.MIME, normalize.Options{
		PDFNativeIngest: p.cfg.PDFNativeIngest,
	})
	if err != nil {
		return nil, err
	}

	entry := &cache.Entry{
		DocumentName: doc.Filename,
		MIME:         doc.MIME,
	}

	if norm.Native {
		entry.Native = true
		entry.Blob = norm.Blob
		entry.BlobMIME = norm.BlobMIME
		return entry, nil
	}

	entry.Chunks = chunker.Split(norm.Text, chunker.Config{
		CharBudget: p.cfg.ChunkCharBudget,
		MaxChunks:  p.cfg.MaxChunks,
	})
	if len(entry.Chunks) == 0 {
		return nil, &Error{
			Status: 422,
			Code:   "empty_document",
			Err:    fmt.Errorf("no extractable content in %s", doc.Filename),
		}
	}
	return entry, nil
}

// answer fans questions out to the provider under the concurrency cap and
// collects results into an index-addressed buffer, so output order is input
// order regardless of completion order.
func (p *Pipeline) answer(ctx context.Context, entry *cache.Entry, questions []string, log *slog.Logger) []session.AnswerResult {
	results := make([]session.AnswerResult, len(questions))

	input := llm.Input{}
	if entry.Native {
		input.Blob = entry.Blob
		input.BlobMIME = entry.BlobMIME
	} else {
		input.ContextText = assembleContext(entry.Chunks)
	}

	sem := make(chan struct{}, p.cfg.MaxConcurrentAnswers)
	done := make(chan int, len(questions))

	for i, q := range questions {
		sem <- struct{}{}
		go func(i int, q string) {
			defer func() { <-sem }()
			text, err := p.askOne(ctx, input, q)
			if err != nil {
				log.Warn("question failed", "question_index", i, "error", err)
				results[i] = session.AnswerResult{
					QuestionIndex: i,
					Error:         errorKind(err),
				}
			} else {
				results[i] = session.AnswerResult{
					QuestionIndex: i,
					AnswerText:    &text,
				}
			}
			done <- i
		}(i, q)
	}

	for range questions {
		<-done
	}
	return results
}

// askOne runs a single provider call with a per-question deadline and
// bounded retries for transient failures.
func (p *Pipeline) askOne(ctx context.Context, input llm.Input, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AnswerTimeout)
	defer cancel()

	input.Question = question

	var text string
	var err error
	for attempt := range MaxRetries {
		text, err = p.provider.Generate(ctx, input)
		if err == nil || !IsRetryable(err) {
			break
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", &llm.ProviderError{Kind: llm.KindTimeout, Err: ctx.Err()}
		}
	}
	return text, err
}

// assembleContext concatenates chunks with explicit ordering markers.
func assembleContext(chunks []chunker.Chunk) string {
	if len(chunks) == 1 {
		return chunks[0].Text
	}
	var sb []byte
	for _, c := range chunks {
		sb = fmt.Appendf(sb, "--- Section %d of %d ---\n%s\n\n", c.Index+1, len(chunks), c.Text)
	}
	return string(sb)
}

func errorKind(err error) string {
	var provErr *llm.ProviderError
	if errors.As(err, &provErr) {
		return string(provErr.Kind)
	}
	return string(llm.KindUnknown)
}
