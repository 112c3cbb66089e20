package types

// ResumeDocument is the structured resume a run produces. The shape mirrors
// the JSON schema in internal/schemas; synthesis output that does not
// validate against that schema never becomes a ResumeDocument.
type ResumeDocument struct {
	PersonalInfo map[string]string `json:"personal_info"`
	Summary      string            `json:"summary"`
	Skills       SkillSet          `json:"skills"`
	Experience   []ExperienceEntry `json:"experience"`
	Education    []string          `json:"education"`
	Projects     []ProjectEntry    `json:"projects"`
	Keywords     []string          `json:"keywords"`
}

// SkillSet groups skills into the categories the document renders.
type SkillSet struct {
	Frontend []string `json:"frontend"`
	Backend  []string `json:"backend"`
	DevOps   []string `json:"devops"`
	Cloud    []string `json:"cloud"`
	AIML     []string `json:"ai_ml"`
	Tools    []string `json:"tools"`
}

// ExperienceEntry is one role on the resume.
type ExperienceEntry struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Duration string   `json:"duration"`
	Location string   `json:"location,omitempty"`
	Bullets  []string `json:"bullets"`
}

// ProjectEntry is one project on the resume. Commits is populated only when
// the profile source verified the count; it is never an LLM estimate.
type ProjectEntry struct {
	Name        string   `json:"name"`
	Commits     int      `json:"commits,omitempty"`
	Description string   `json:"description,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
}
