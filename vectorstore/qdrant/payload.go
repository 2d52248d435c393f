package qdrant

import (
	"github.com/bytedance/sonic"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/darkhanakh/claude-context/vectorstore"
)

const (
	fieldID            = "id"
	fieldContent       = "content"
	fieldRelativePath  = "relativePath"
	fieldStartLine     = "startLine"
	fieldEndLine       = "endLine"
	fieldFileExtension = "fileExtension"
	fieldMetadata      = "metadata"
)

// toPayload converts a Document's payload fields into a Qdrant value
// map. Object-valued metadata is serialized to a canonical JSON string
// rather than a nested struct value, so it round-trips identically
// regardless of the backend's native nested-value quirks.
func toPayload(doc vectorstore.Document) map[string]*qc.Value {
	metadataJSON := "{}"
	if len(doc.Metadata) > 0 {
		if b, err := sonic.Marshal(doc.Metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	return map[string]*qc.Value{
		fieldID:            qc.NewValueString(doc.ID),
		fieldContent:       qc.NewValueString(doc.Content),
		fieldRelativePath:  qc.NewValueString(doc.RelativePath),
		fieldStartLine:     qc.NewValueInt(int64(doc.StartLine)),
		fieldEndLine:       qc.NewValueInt(int64(doc.EndLine)),
		fieldFileExtension: qc.NewValueString(doc.FileExtension),
		fieldMetadata:      qc.NewValueString(metadataJSON),
	}
}

// fromPayload reconstructs a Document's payload fields (everything
// but the dense/sparse vectors) from a Qdrant value map.
func fromPayload(payload map[string]*qc.Value) vectorstore.Document {
	doc := vectorstore.Document{
		ID:            payload[fieldID].GetStringValue(),
		Content:       payload[fieldContent].GetStringValue(),
		RelativePath:  payload[fieldRelativePath].GetStringValue(),
		StartLine:     int(payload[fieldStartLine].GetIntegerValue()),
		EndLine:       int(payload[fieldEndLine].GetIntegerValue()),
		FileExtension: payload[fieldFileExtension].GetStringValue(),
	}

	if raw := payload[fieldMetadata].GetStringValue(); raw != "" {
		var metadata map[string]any
		if err := sonic.Unmarshal([]byte(raw), &metadata); err == nil {
			doc.Metadata = metadata
		}
	}

	return doc
}
