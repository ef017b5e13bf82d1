package modelstore

import (
	"fmt"
	"strings"
)

type SourceType string

const (
	SourceHuggingface SourceType = "huggingface"
	SourceDirect      SourceType = "direct"
	SourceFile        SourceType = "file"
)

type ModelSource struct {
	Type     SourceType
	Location string
	Original string
}

// ParseSource classifies a model reference. "hf:owner/repo" and bare
// "owner/repo" ids resolve to the HuggingFace hub, "file:" to a local
// weights file, and http(s) URLs to a direct download.
func ParseSource(source string) (*ModelSource, error) {
	if source == "" {
		return nil, fmt.Errorf("empty model source. Source is required")
	}

	ms := &ModelSource{Original: source}

	switch {
	case strings.HasPrefix(source, "hf:"):
		ms.Type = SourceHuggingface
		ms.Location = strings.TrimPrefix(source, "hf:")
	case strings.HasPrefix(source, "file:"):
		ms.Type = SourceFile
		ms.Location = strings.TrimPrefix(source, "file:")
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		ms.Type = SourceDirect
		ms.Location = source
	default:
		if strings.Count(source, "/") > 1 {
			return nil, fmt.Errorf("unsupported model source: %s", source)
		}
		ms.Type = SourceHuggingface
		ms.Location = source
	}

	if ms.Location == "" {
		return nil, fmt.Errorf("unsupported model source: %s", source)
	}

	return ms, nil
}
