package interpret

// Request is the payload for an interpretation call. Exactly one of
// SourceText or SourceDocument is populated.
type Request struct {
	SourceText     string `json:"source_text,omitempty"`
	SourceDocument []byte `json:"source_document,omitempty"`
	MimeType       string `json:"mime_type,omitempty"`
	Language       string `json:"language,omitempty"`
}

// Response carries the generated interpretation.
type Response struct {
	InterpretationText string   `json:"interpretation_text"`
	Recommendations    []string `json:"recommendations,omitempty"`
}

// DiagramRequest asks the backend to generate diagram markup for the
// listed types.
type DiagramRequest struct {
	SourceText     string   `json:"source_text,omitempty"`
	SourceDocument []byte   `json:"source_document,omitempty"`
	MimeType       string   `json:"mime_type,omitempty"`
	Language       string   `json:"language,omitempty"`
	DiagramTypes   []string `json:"diagram_types"`
}

// DiagramResponse maps diagram type names to markup payloads. A key
// missing for a requested type means that type failed server-side;
// that is a valid partial-success response, not an error.
type DiagramResponse struct {
	Diagrams map[string]string `json:"diagrams"`
}
