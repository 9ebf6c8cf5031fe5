package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SavedQuery is one named pull-request search, e.g.
//
//	name: assigned
//	query: "scope:assigned-to-me state:opened"
type SavedQuery struct {
	Name  string `yaml:"name" json:"name"`
	Query string `yaml:"query" json:"query"`
}

// DefaultQueries are used when no queries file exists.
var DefaultQueries = []SavedQuery{
	{Name: "created by me", Query: "scope:created-by-me state:opened"},
	{Name: "assigned to me", Query: "scope:assigned-to-me state:opened"},
}

// LoadQueries reads saved queries from a YAML file. A missing file is not an
// error; the defaults are returned instead.
func LoadQueries(path string) ([]SavedQuery, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultQueries, nil
		}
		return nil, fmt.Errorf("failed to read queries file: %w", err)
	}
	var doc struct {
		Queries []SavedQuery `yaml:"queries"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse queries file: %w", err)
	}
	out := make([]SavedQuery, 0, len(doc.Queries))
	for _, q := range doc.Queries {
		if q.Name == "" || q.Query == "" {
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return DefaultQueries, nil
	}
	return out, nil
}
