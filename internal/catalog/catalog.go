// Package catalog loads the read-only topic catalog shared by all sessions.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"campusinterview/internal/model"
)

type file struct {
	Topics []model.Topic `yaml:"topics"`
}

// LoadFile reads a YAML catalog of the form `topics: [...]`
func LoadFile(path string) ([]model.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing topics: %w", err)
	}
	if err := Validate(f.Topics); err != nil {
		return nil, err
	}
	return f.Topics, nil
}

// Validate checks every topic and rejects duplicate names
func Validate(topics []model.Topic) error {
	if len(topics) == 0 {
		return fmt.Errorf("topic catalog is empty")
	}
	seen := make(map[string]bool, len(topics))
	for i := range topics {
		if err := topics[i].Validate(); err != nil {
			return err
		}
		if seen[topics[i].Name] {
			return fmt.Errorf("duplicate topic %q", topics[i].Name)
		}
		seen[topics[i].Name] = true
	}
	return nil
}

// Find returns the topic with the given name
func Find(topics []model.Topic, name string) (model.Topic, bool) {
	for _, t := range topics {
		if t.Name == name {
			return t, true
		}
	}
	return model.Topic{}, false
}

// Write dumps topics as YAML, the format LoadFile reads
func Write(path string, topics []model.Topic) error {
	data, err := yaml.Marshal(file{Topics: topics})
	if err != nil {
		return fmt.Errorf("marshalling topics: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
