// Package knowledge loads the static FAQ data the assistant answers from.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarah-larkin/ai-learning-series/internal/model"
	"gopkg.in/yaml.v3"
)

type faqFile struct {
	FAQs []model.FAQ `json:"faqs" yaml:"faqs"`
}

// LoadFAQs reads {"faqs":[{question,answer}]} from a JSON or YAML file,
// chosen by extension.
func LoadFAQs(path string) ([]model.FAQ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read faq file %s: %w", path, err)
	}
	return ParseFAQs(data, filepath.Ext(path))
}

func ParseFAQs(data []byte, ext string) ([]model.FAQ, error) {
	var file faqFile
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse faq yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse faq json: %w", err)
		}
	}
	faqs := make([]model.FAQ, 0, len(file.FAQs))
	for i, faq := range file.FAQs {
		if strings.TrimSpace(faq.Question) == "" {
			return nil, fmt.Errorf("faq %d has no question", i)
		}
		faqs = append(faqs, faq)
	}
	return faqs, nil
}
