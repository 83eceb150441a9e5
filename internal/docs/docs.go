package docs

import (
	"fmt"
	"strings"
)

// Topic holds a single documentation article.
type Topic struct {
	Name    string
	Title   string
	Summary string // shown by 'pipecraft docs'
	Content string
}

// All returns every topic in display order.
func All() []Topic {
	return topics
}

// Get looks up a topic by name, ignoring case and surrounding space.
func Get(name string) (Topic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range topics {
		if t.Name == name {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("unknown topic %q (have %s) — run 'pipecraft docs' to read the list", name, strings.Join(Names(), ", "))
}

// Names returns the topic slugs in display order.
func Names() []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}
