package knowledge

import (
	"time"
)

// ScanMode selects how many repositories a build fetches READMEs for.
type ScanMode string

const (
	// ScanFull indexes every repository.
	ScanFull ScanMode = "full"
	// ScanShallow indexes at most the shallowLimit highest-starred
	// repositories, trading index completeness for quota.
	ScanShallow ScanMode = "shallow"
)

// Valid reports whether m is a recognized scan mode.
func (m ScanMode) Valid() bool {
	return m == ScanFull || m == ScanShallow
}

const (
	// maxSkills caps the aggregated skill index, regardless of input volume.
	maxSkills = 60

	// maxReadmeKeywords caps keywords taken from a single README so one
	// long document cannot crowd out the rest of the index.
	maxReadmeKeywords = 40

	// shallowLimit is the candidate count for shallow scans.
	shallowLimit = 10
)

// RepoRecord is the per-repository text index entry inside a knowledge base.
type RepoRecord struct {
	Name        string
	Description string
	Readme      string
	Language    string
}

// KnowledgeBase is the searchable index built from one user's repositories.
// Skills preserve first-seen insertion order and never exceed maxSkills.
// A completed build replaces the previous knowledge base atomically; it is
// never patched field by field.
type KnowledgeBase struct {
	Handle  string
	Skills  []string
	Repos   []RepoRecord
	Mode    ScanMode
	BuiltAt time.Time
}
