package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amirphl/pantheon/internal/backtest"
)

const ResultFile = "result.json"

// WriteJSON saves the whole result, records and trades included, as one document.
func WriteJSON(dir string, res backtest.Result) ([]string, error) {
	path := filepath.Join(dir, ResultFile)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("error encoding %s: %w", path, err)
	}
	return []string{path}, nil
}
