package storage

// Conceptual key layout for persisted client state.
const (
	// KeySessionCore holds the StoredSessionRecord (session minus blob).
	KeySessionCore = "session.core"
	// KeySessionBlob holds the base64-encoded document attachment,
	// keyed separately so it can be evicted without touching the record.
	KeySessionBlob = "session.blob"
	// KeyHistoryLog holds the bounded submission history.
	KeyHistoryLog = "history.log"
	// KeySettingsCache mirrors user preferences for hydration.
	KeySettingsCache = "settings.cache"
)

// evictionOrder lists keys deleted during quota recovery, highest
// priority victim first. session.core is never auto-evicted: the newest
// write either lands or the caller sees QuotaExceeded.
var evictionOrder = []string{KeyHistoryLog, KeySettingsCache, KeySessionBlob}
