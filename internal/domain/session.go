package domain

// Seed answer keys written at session creation, before any question is asked.
const (
	SeedKeyIdentity    = "telegram_id"
	SeedKeyDisplayName = "display_name"
)

// Session is one identity's in-flight progress through the catalog. Cursor
// is the 0-indexed position of the question currently awaiting an answer;
// Answers holds one entry per accepted answer plus the two seed entries.
type Session struct {
	Identity    int64
	DisplayName string
	Cursor      int
	Answers     map[string]string
}

// CompletedRecord is a finished answer set, handed to the sink exactly once.
type CompletedRecord struct {
	Identity    int64
	DisplayName string
	Answers     map[string]string
}
