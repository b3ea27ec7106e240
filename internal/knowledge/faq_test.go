package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFAQs(t *testing.T) {
	tests := []struct {
		path      string
		wantCount int
		wantFirst string
	}{
		{path: "testdata/faqs.json", wantCount: 2, wantFirst: "What is WCC?"},
		{path: "testdata/faqs.yaml", wantCount: 2, wantFirst: "What is WCC?"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			faqs, err := LoadFAQs(tt.path)
			require.NoError(t, err)
			require.Len(t, faqs, tt.wantCount)
			assert.Equal(t, tt.wantFirst, faqs[0].Question)
			assert.NotEmpty(t, faqs[0].Answer)
		})
	}
}

func TestLoadFAQsMissingFile(t *testing.T) {
	_, err := LoadFAQs("testdata/missing.json")
	require.Error(t, err)
}

func TestParseFAQs(t *testing.T) {
	_, err := ParseFAQs([]byte(`{"faqs": [`), ".json")
	require.Error(t, err)

	_, err = ParseFAQs([]byte(`{"faqs": [{"question": " ", "answer": "x"}]}`), ".json")
	require.Error(t, err)

	faqs, err := ParseFAQs([]byte(`{}`), ".json")
	require.NoError(t, err)
	assert.Empty(t, faqs)
}
