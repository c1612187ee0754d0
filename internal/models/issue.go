package models

// IssueRequest is the minimal payload for creating a tracker issue.
type IssueRequest struct {
	ProjectKey string
	Title      string
	Body       string
	IssueType  string
	Priority   string
	Labels     []string
}

// Issue identifies a created tracker issue.
type Issue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}
