package models

// TeamProfile is reference data describing one team. The conversation
// core only reads it.
type TeamProfile struct {
	Name             string `yaml:"name" json:"name"`
	JiraProject      string `yaml:"jira_project" json:"jira_project"`
	DefaultIssueType string `yaml:"default_issue_type" json:"default_issue_type"`
	// Rules is free text injected into the system prompt.
	Rules string `yaml:"rules,omitempty" json:"rules,omitempty"`
	// TeamLead is optional; voice classification matches against it.
	TeamLead string `yaml:"team_lead,omitempty" json:"team_lead,omitempty"`
}
