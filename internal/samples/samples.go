// Package samples holds the catalog of example questions offered to users.
package samples

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var embeddedCatalog []byte

type Question struct {
	Text  string `yaml:"text" json:"text"`
	Topic string `yaml:"topic" json:"topic"`
}

type Catalog struct {
	Questions []Question `yaml:"questions" json:"questions"`
}

// Texts returns the question texts in catalog order.
func (c Catalog) Texts() []string {
	out := make([]string, 0, len(c.Questions))
	for _, question := range c.Questions {
		out = append(out, question.Text)
	}
	return out
}

func (c Catalog) ByTopic(topic string) []Question {
	out := make([]Question, 0)
	for _, question := range c.Questions {
		if strings.EqualFold(question.Topic, topic) {
			out = append(out, question)
		}
	}
	return out
}

func Default() (Catalog, error) {
	return Parse(embeddedCatalog)
}

func Parse(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode sample questions: %w", err)
	}
	if len(catalog.Questions) == 0 {
		return Catalog{}, fmt.Errorf("sample question catalog is empty")
	}
	seen := make(map[string]struct{}, len(catalog.Questions))
	for i, question := range catalog.Questions {
		text := strings.TrimSpace(question.Text)
		if text == "" {
			return Catalog{}, fmt.Errorf("sample question %d has no text", i)
		}
		if _, ok := seen[text]; ok {
			return Catalog{}, fmt.Errorf("duplicate sample question %q", text)
		}
		seen[text] = struct{}{}
		catalog.Questions[i].Text = text
	}
	return catalog, nil
}
