package sparse

// ExportState returns a round-trip-lossless snapshot of the encoder's
// observable state: the vocabulary/DF/IDF tables as arrays of pairs,
// the corpus statistics, and the parameter block.
func (e *Encoder) ExportState() ExportedState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	vocab := make([]VocabEntry, 0, len(e.vocabulary))
	for term, idx := range e.vocabulary {
		vocab = append(vocab, VocabEntry{Term: term, Index: idx})
	}

	dfEntries := make([]DFEntry, 0, len(e.documentFrequency))
	for term, df := range e.documentFrequency {
		dfEntries = append(dfEntries, DFEntry{Term: term, DF: df})
	}

	idfEntries := make([]IDFEntry, 0, len(e.idf))
	for term, idf := range e.idf {
		idfEntries = append(idfEntries, IDFEntry{Term: term, IDF: idf})
	}

	return ExportedState{
		Vocabulary:        vocab,
		DocumentFrequency: dfEntries,
		IDFCache:          idfEntries,
		TotalDocuments:    e.totalDocuments,
		AvgDocumentLength: e.avgDocumentLength,
		Config:            e.params,
	}
}

// ImportState replaces the encoder's state with the given snapshot and
// transitions it to Initialized, atomically.
func (e *Encoder) ImportState(state ExportedState) {
	vocabulary := make(map[string]int32, len(state.Vocabulary))
	for _, entry := range state.Vocabulary {
		vocabulary[entry.Term] = entry.Index
	}

	documentFrequency := make(map[string]int, len(state.DocumentFrequency))
	for _, entry := range state.DocumentFrequency {
		documentFrequency[entry.Term] = entry.DF
	}

	idf := make(map[string]float64, len(state.IDFCache))
	for _, entry := range state.IDFCache {
		idf[entry.Term] = entry.IDF
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.vocabulary = vocabulary
	e.documentFrequency = documentFrequency
	e.idf = idf
	e.totalDocuments = state.TotalDocuments
	e.avgDocumentLength = state.AvgDocumentLength
	e.params = withDefaults(state.Config)
	e.initialized = true
}
