package llm

import (
	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens counts tokens in text for the given model. When the model's
// encoding is unknown it falls back to the rough 4-characters-per-token rule.
func EstimateTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return (len(text) + 3) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
