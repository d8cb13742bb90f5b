package types

import "time"

// DiagramType tags the kind of auxiliary diagram generated for a session.
type DiagramType string

const (
	DiagramMindMap   DiagramType = "mind_map"
	DiagramFlowChart DiagramType = "flow_chart"
	DiagramTable     DiagramType = "table"
	DiagramStatChart DiagramType = "stat_chart"
)

// AllDiagramTypes returns every known diagram type in display order.
func AllDiagramTypes() []DiagramType {
	return []DiagramType{DiagramMindMap, DiagramFlowChart, DiagramTable, DiagramStatChart}
}

// Valid reports whether t is a known diagram type.
func (t DiagramType) Valid() bool {
	switch t {
	case DiagramMindMap, DiagramFlowChart, DiagramTable, DiagramStatChart:
		return true
	}
	return false
}

// DocumentRef points at a document attachment stored under a separate
// blob key. The blob may be evicted independently of the session record.
type DocumentRef struct {
	BlobKey   string `json:"blob_key"`
	MimeType  string `json:"mime_type"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// SourceContent is the submitted source. Exactly one of InlineText or
// Document is populated.
type SourceContent struct {
	InlineText string       `json:"inline_text,omitempty"`
	Document   *DocumentRef `json:"document,omitempty"`
}

// IsDocument reports whether the source is a document attachment.
func (s SourceContent) IsDocument() bool {
	return s.Document != nil
}

// DiagramPayload is the raw markup returned by the backend for one
// diagram type, as received.
type DiagramPayload struct {
	Markup     string    `json:"markup"`
	ReceivedAt time.Time `json:"received_at"`
}

// Session is the unit of work for one interpretation. It is mutated in
// place as pipeline stages complete and replaced wholesale by the next
// submission.
type Session struct {
	ID              SessionID                      `json:"id"`
	Source          SourceContent                  `json:"source"`
	Interpretation  string                         `json:"interpretation,omitempty"`
	Recommendations []string                       `json:"recommendations,omitempty"`
	Diagrams        map[DiagramType]DiagramPayload `json:"diagrams,omitempty"`
	DiagramPrefs    []DiagramType                  `json:"diagram_prefs"`
	Language        string                         `json:"language,omitempty"`
	CreatedAt       time.Time                      `json:"created_at"`
	LastTouchedAt   time.Time                      `json:"last_touched_at"`
}

// HasInterpretation reports whether the interpretation milestone has
// been reached.
func (s *Session) HasInterpretation() bool {
	return s.Interpretation != ""
}

// Clone returns a deep copy so callers can hold a session without
// racing store mutations.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.Source.Document != nil {
		doc := *s.Source.Document
		out.Source.Document = &doc
	}
	if s.Recommendations != nil {
		out.Recommendations = append([]string(nil), s.Recommendations...)
	}
	if s.Diagrams != nil {
		out.Diagrams = make(map[DiagramType]DiagramPayload, len(s.Diagrams))
		for k, v := range s.Diagrams {
			out.Diagrams[k] = v
		}
	}
	if s.DiagramPrefs != nil {
		out.DiagramPrefs = append([]DiagramType(nil), s.DiagramPrefs...)
	}
	return &out
}

// StoredSessionRecord is the serialized form written to persistent
// storage. The document blob lives under its own key and transient UI
// state is never part of Session, so the record is the session plus a
// format version.
type StoredSessionRecord struct {
	Version int      `json:"version"`
	Session *Session `json:"session"`
}

// StoredSessionVersion is bumped when the record layout changes;
// records with an unknown version are treated as corrupt.
const StoredSessionVersion = 1

// HistoryEntry is one line in the bounded submission log, newest first.
type HistoryEntry struct {
	ID          EntryID   `json:"id"`
	DisplayName string    `json:"display_name"`
	Timestamp   time.Time `json:"timestamp"`
	SizeBytes   int64     `json:"size_bytes"`
	MimeType    string    `json:"mime_type,omitempty"`
}

// SettingsCache mirrors the user preferences that were active when the
// current session was created, so hydration never re-reads config.
type SettingsCache struct {
	DiagramPrefs []DiagramType `json:"diagram_prefs"`
	Language     string        `json:"language,omitempty"`
}
