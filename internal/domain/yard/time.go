package yard

// TimestampLayout is RFC 3339 UTC with a fixed nine-digit fraction. Stored
// timestamps are compared as text, so the fraction width must be constant
// for lexical order to match chronological order within a second.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
