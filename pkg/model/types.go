package model

import "time"

// Run is the record of one successful generation
type Run struct {
	ID             string         `json:"id" doc:"Run identifier (UUIDv7)"`
	Source         string         `json:"source" doc:"Path or URL the document was read from"`
	InputDigest    string         `json:"input_digest" doc:"SHA-256 of the input document"`
	APITitle       string         `json:"api_title,omitempty"`
	APIVersion     string         `json:"api_version,omitempty"`
	OpenAPIVersion string         `json:"openapi_version"`
	SchemaNames    []string       `json:"schema_names"`
	TypesDigest    string         `json:"types_digest" doc:"SHA-256 of the generated types module"`
	ReexportDigest string         `json:"reexport_digest" doc:"SHA-256 of the re-export module"`
	Edits          map[string]int `json:"edits,omitempty" doc:"Number of schema nodes each rule rewrote"`
	Changed        bool           `json:"changed" doc:"Whether any output differs from the previous run"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

// SchemaDiff lists component schemas that appeared or disappeared between
// two runs
type SchemaDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the schema set is unchanged
func (d SchemaDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// RunResult is returned by a generation run
type RunResult struct {
	Run      *Run       `json:"run"`
	Diff     SchemaDiff `json:"diff"`
	Warnings []string   `json:"warnings,omitempty"`
	// Recorded is false when the run history could not be written
	Recorded bool `json:"recorded"`
}

// DiffSchemas compares two ordered schema name lists
func DiffSchemas(previous, current []string) SchemaDiff {
	prev := make(map[string]bool, len(previous))
	for _, name := range previous {
		prev[name] = true
	}
	cur := make(map[string]bool, len(current))
	for _, name := range current {
		cur[name] = true
	}

	var diff SchemaDiff
	for _, name := range current {
		if !prev[name] {
			diff.Added = append(diff.Added, name)
		}
	}
	for _, name := range previous {
		if !cur[name] {
			diff.Removed = append(diff.Removed, name)
		}
	}
	return diff
}
