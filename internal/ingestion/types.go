package ingestion

// TextInput is the JSON body of a plain-text ingestion.
type TextInput struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// VectorInsertInput inserts a pre-embedded chunk directly.
type VectorInsertInput struct {
	Text      string         `json:"text"`
	Embedding []float64      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Source    string         `json:"source,omitempty"`
}

type Response struct {
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Embeddings int    `json:"embeddings,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
}

type Document struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Size       string         `json:"size"`
	UploadedAt string         `json:"uploadedAt"`
	Status     string         `json:"status"`
	Chunks     int            `json:"chunks"`
	Embeddings int            `json:"embeddings"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
