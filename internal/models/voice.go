package models

// VoiceResult is what a recorded request was classified into.
// TeamName is nil when no known team matched.
type VoiceResult struct {
	Description string
	TeamName    *string
}
