package model

import (
	"context"
	"time"
)

// Posting is a single job advertisement returned by the search provider,
// normalized at ingestion. Missing text fields are empty strings.
type Posting struct {
	Title        string   // job title
	Company      string   // company name
	Location     string   // location string as shown by the provider
	Description  string   // full description, optional
	PostedText   string   // raw "posted X ago" text, optional
	Via          string   // board the provider found it on, e.g. "via LinkedIn"
	ApplyLinks   []string // apply-option links in provider order (entries may be empty)
	RelatedLinks []string // related links in provider order (entries may be empty)
	JobLink      string   // provider's direct job link
	Role         string   // role that produced this posting
}

// Vector is an embedding of fixed dimension produced by an Embedder.
type Vector []float32

// CandidateProfile is a named profile text with its precomputed embedding.
type CandidateProfile struct {
	Name      string
	Text      string
	Embedding Vector
}

// ScoredMatch pairs a posting with its similarity score against one profile.
// Index is the posting's position in discovery order.
type ScoredMatch struct {
	Score   float64
	Posting Posting
	Index   int
}

// ProfileMatches is the ranked list of matches for one profile.
type ProfileMatches struct {
	Profile string
	Matches []ScoredMatch
}

// RunResult holds one entry per configured profile, in profile order.
type RunResult struct {
	Profiles []ProfileMatches
}

// Digest is the render-ready structure handed to renderers and notifiers.
type Digest struct {
	GeneratedAt time.Time
	Roles       []string
	Sections    []DigestSection
}

// DigestSection is the list of entries for one candidate profile.
type DigestSection struct {
	Profile string
	Entries []DigestEntry
}

// DigestEntry is one ranked posting with its resolved link.
type DigestEntry struct {
	Title    string
	Company  string
	Location string
	Via      string // source board, may be empty
	Link     string
	Score    float64
	Percent  int
}

// Searcher queries the external job search provider for one page of results.
type Searcher interface {
	Search(ctx context.Context, query string, offset, pageSize int) ([]Posting, error)
}

// PostingFilter decides whether a posting is kept.
type PostingFilter interface {
	Match(p Posting) bool
}

// Embedder turns text into vectors. EmbedBatch returns one vector per input, in order.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)
	Model() string
}

// EmbeddingCache stores embeddings keyed by an opaque cache key.
type EmbeddingCache interface {
	Get(key string) (Vector, bool, error)
	Put(key string, model string, v Vector) error
}

// Notifier delivers a rendered digest.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}
