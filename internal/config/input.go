package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// LoadInput reads a run input file. The extension picks the format:
// .yaml/.yml parse as YAML, everything else as JSON.
func LoadInput(path string) (*model.RunInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read input %s", path)
	}

	var in model.RunInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &in); err != nil {
			return nil, eris.Wrapf(err, "config: parse input %s", path)
		}
	default:
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, eris.Wrapf(err, "config: parse input %s", path)
		}
	}
	return &in, nil
}

// ValidateInput rejects inputs no run could act on: an empty URL list,
// or any entry that is not an absolute http(s) URL.
func ValidateInput(in *model.RunInput) error {
	nonEmpty := 0
	for _, raw := range in.URLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		nonEmpty++
		u, err := url.Parse(raw)
		if err != nil {
			return eris.Wrapf(err, "config: invalid url %q", raw)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return eris.Errorf("config: invalid url %q (must be absolute http or https)", raw)
		}
	}
	if nonEmpty == 0 {
		return eris.New("config: input has no urls to scrape")
	}
	return nil
}
