// Package session persists one record per processing request and its
// append-only question/answer history in an external key-value store.
package session

import (
	"context"
	"time"

	"github.com/MileWhile/Auramax/internal/chunker"
)

// Session is the persisted record for one processing request. The store
// owns it once written; the pipeline holds only a transient reference.
type Session struct {
	SessionID    string          `json:"session_id"`
	Fingerprint  string          `json:"fingerprint"`
	DocumentName string          `json:"document_name"`
	Chunks       []chunker.Chunk `json:"chunks"`
	CreatedAt    time.Time       `json:"created_at"`
	ModelUsed    string          `json:"model_used"`
}

// AnswerResult is one answer slot, ordered to match the input questions.
// AnswerText is nil when the provider call for that question failed.
type AnswerResult struct {
	QuestionIndex int     `json:"question_index"`
	AnswerText    *string `json:"answer_text"`
	Error         string  `json:"error,omitempty"`
}

// QARecord is one answered batch, immutable once appended.
type QARecord struct {
	SessionID             string         `json:"session_id"`
	Questions             []string       `json:"questions"`
	Answers               []AnswerResult `json:"answers"`
	Timestamp             time.Time      `json:"timestamp"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
}

// Store is the session persistence contract. History is append-only per
// session; retention is the store's concern, not the pipeline's.
type Store interface {
	Put(ctx context.Context, s Session) error
	AppendQA(ctx context.Context, sessionID string, rec QARecord) error
	History(ctx context.Context, sessionID string) ([]QARecord, error)
	Ping(ctx context.Context) error
}
