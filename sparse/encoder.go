// Package sparse implements the code-aware BM25 sparse encoder: it
// owns a vocabulary, a document-frequency table, and cached IDF
// scores, and emits sparse vectors for documents and queries.
package sparse

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/darkhanakh/claude-context/internal/xlog"
	"github.com/darkhanakh/claude-context/tokenize"
)

// Encoder is the BM25 sparse encoder of §4.2. The zero value is not
// usable; construct one with NewEncoder. An Encoder transitions
// Fresh -> Initialized on the first successful BuildVocabulary or
// ImportState call, and back to Fresh on Clear (§4.7).
//
// External synchronization is required for concurrent
// BuildVocabulary/ImportState/Clear calls against the same Encoder;
// concurrent Embed* calls against an immutable, already-built Encoder
// are safe and only take a read lock.
type Encoder struct {
	mu sync.RWMutex

	params Params

	vocabulary        map[string]int32
	documentFrequency map[string]int
	idf               map[string]float64
	totalDocuments    int
	avgDocumentLength float64
	initialized       bool
}

// NewEncoder creates an Encoder with the given parameters, filling a
// zero K1, B, MaxDFRatio or TokenMode with its §6 default; MinDF and
// SublinearTF are kept as given. The Encoder starts Fresh.
func NewEncoder(params Params) *Encoder {
	return &Encoder{
		params:            withDefaults(params),
		vocabulary:        make(map[string]int32),
		documentFrequency: make(map[string]int),
		idf:               make(map[string]float64),
	}
}

// Params returns a copy of the encoder's current parameter block.
func (e *Encoder) Params() Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// SetParams mutates the encoder's parameters in place. Rebuild is the
// only way to bring the cached IDFs back in sync: mutating parameters
// while initialized is allowed, but emits a warning since the cached
// scores become stale for the new parameters until the next
// BuildVocabulary.
func (e *Encoder) SetParams(ctx context.Context, params Params) {
	e.mu.Lock()
	initialized := e.initialized
	e.params = withDefaults(params)
	e.mu.Unlock()

	if initialized {
		xlog.Warn(ctx, "sparse: parameters mutated on an initialized encoder; cached IDFs are stale until rebuild")
	}
}

// Initialized reports whether the encoder has a built or imported
// vocabulary.
func (e *Encoder) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// BuildVocabulary performs a single pass over documents: it tokenizes
// each one, accumulates corpus statistics, and assigns dense,
// contiguous vocabulary indices to every term surviving the
// min_df/max_df_ratio filter, together with its precomputed BM25+ IDF.
// An empty corpus is legal and produces an empty vocabulary. Calling
// BuildVocabulary while already Initialized atomically replaces the
// previous state.
func (e *Encoder) BuildVocabulary(documents []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode := e.params.TokenMode

	totalTokens := 0
	df := make(map[string]int)

	for _, doc := range documents {
		tokens := tokenize.Tokenize(doc, mode)
		totalTokens += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := len(documents)
	avgLen := 0.0
	if n > 0 {
		avgLen = float64(totalTokens) / float64(n)
	}
	// Ceiling, not floor: a term occurring in every document of a
	// tiny corpus (n=1 or n=2) must still survive the ratio filter,
	// matching the worked example of a 2-document corpus where a
	// term present in both documents is expected to remain in
	// vocabulary.
	maxDF := int(math.Ceil(e.params.MaxDFRatio * float64(n)))

	terms := make([]string, 0, len(df))
	for term, freq := range df {
		if freq < e.params.MinDF || freq > maxDF {
			continue
		}
		terms = append(terms, term)
	}
	// Deterministic assignment order, independent of Go's map
	// iteration order.
	sort.Strings(terms)

	vocabulary := make(map[string]int32, len(terms))
	documentFrequency := make(map[string]int, len(terms))
	idfCache := make(map[string]float64, len(terms))

	var idx int32
	for _, term := range terms {
		freq := df[term]
		vocabulary[term] = idx
		documentFrequency[term] = freq
		idfCache[term] = bm25PlusIDF(n, freq)
		idx++
	}

	e.vocabulary = vocabulary
	e.documentFrequency = documentFrequency
	e.idf = idfCache
	e.totalDocuments = n
	e.avgDocumentLength = avgLen
	e.initialized = true
}

// bm25PlusIDF computes the BM25+ inverse document frequency, which is
// non-negative even for terms appearing in most documents:
//
//	idf = ln( (N - df + 0.5) / (df + 0.5) + 1 )
func bm25PlusIDF(n, df int) float64 {
	return math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// EmbedDocument embeds text using the document-side formula. It is
// identical to EmbedQuery today; the two entry points are kept
// separate so a future revision can diverge without breaking callers.
func (e *Encoder) EmbedDocument(ctx context.Context, text string) Vector {
	return e.embed(ctx, text)
}

// EmbedQuery embeds text using the query-side formula.
func (e *Encoder) EmbedQuery(ctx context.Context, text string) Vector {
	return e.embed(ctx, text)
}

// embed implements §4.2's embed_document/embed_query formula. If the
// encoder is not yet initialized, it auto-initializes in degraded mode
// from this single input and emits a warning, per §3's lifecycle
// contract.
func (e *Encoder) embed(ctx context.Context, text string) Vector {
	e.mu.RLock()
	initialized := e.initialized
	e.mu.RUnlock()

	if !initialized {
		xlog.Warn(ctx, "sparse: embedding on an uninitialized encoder; auto-initializing from this single document (degraded mode)")
		e.BuildVocabulary([]string{text})
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	tokens := tokenize.Tokenize(text, e.params.TokenMode)
	docLen := len(tokens)
	if docLen == 0 {
		return Vector{}
	}

	// order records each in-vocabulary term at its first occurrence, so
	// the emitted entries are in a stable order for a given input.
	tf := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if _, ok := e.vocabulary[tok]; !ok {
			continue
		}
		if tf[tok] == 0 {
			order = append(order, tok)
		}
		tf[tok]++
	}

	k1, b := e.params.K1, e.params.B
	avgLen := math.Max(e.avgDocumentLength, 1)

	indices := make([]int32, 0, len(tf))
	values := make([]float64, 0, len(tf))

	for _, term := range order {
		freq := tf[term]
		adjustedTF := float64(freq)
		if e.params.SublinearTF {
			adjustedTF = 1 + math.Log(float64(freq))
		}

		denom := adjustedTF + k1*(1-b+b*float64(docLen)/avgLen)
		score := e.idf[term] * adjustedTF * (k1 + 1) / denom
		if score <= 0 {
			continue
		}

		indices = append(indices, e.vocabulary[term])
		values = append(values, score)
	}

	return Vector{Indices: indices, Values: values}
}

// Clear zeroes all tables and resets the encoder to Fresh.
func (e *Encoder) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.vocabulary = make(map[string]int32)
	e.documentFrequency = make(map[string]int)
	e.idf = make(map[string]float64)
	e.totalDocuments = 0
	e.avgDocumentLength = 0
	e.initialized = false
}
