package model

// Categories is the fixed set a writeup's folder name is matched against.
// Anything else ends up as CategoryMisc.
var Categories = []string{"web", "crypto", "forensics", "pwn", "osint", "rev", "misc"}

const CategoryMisc = "misc"

// IsCategory reports whether name is one of Categories. Matching is exact;
// callers lowercase first.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Writeup is a single writeup.md, described by its frontmatter and location.
type Writeup struct {
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category" yaml:"category"`
	Difficulty  string `json:"difficulty" yaml:"difficulty"`
	Description string `json:"description" yaml:"description"`
	Path        string `json:"path" yaml:"path"`
	Challenge   string `json:"challenge" yaml:"challenge"`
}

// Event represents a CTF competition: one top-level writeups folder.
type Event struct {
	Name     string    `json:"name" yaml:"name"`
	Slug     string    `json:"slug" yaml:"slug"`
	Writeups []Writeup `json:"writeups" yaml:"writeups"`

	// Date is the first frontmatter date found among the event's writeups.
	Date       *string `json:"date" yaml:"date"`
	ReadmePath string  `json:"readme_path,omitempty" yaml:"readme_path,omitempty"`
}

// Index is the manifest the site loads to list events and writeups.
type Index struct {
	GeneratedAt   string  `json:"generated_at" yaml:"generated_at"`
	Events        []Event `json:"events" yaml:"events"`
	TotalEvents   int     `json:"total_events" yaml:"total_events"`
	TotalWriteups int     `json:"total_writeups" yaml:"total_writeups"`
}
