package data

import (
	"encoding/json"
	"os"
	"strings"

	"stock-compare/internal/model"
)

// LoadEODJSON reads a saved Marketstack /eod response from disk.
func LoadEODJSON(path string) (*model.MarketstackEODResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var resp model.MarketstackEODResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveEODJSON writes records in the Marketstack /eod response shape.
func SaveEODJSON(path string, records []model.EODRecord) error {
	resp := model.MarketstackEODResponse{
		Pagination: model.Pagination{
			Limit: len(records),
			Count: len(records),
			Total: len(records),
		},
		Data: records,
	}
	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// GroupBySymbol splits a response into slices keyed by upper-cased symbol.
func GroupBySymbol(resp *model.MarketstackEODResponse) map[string][]model.EODRecord {
	out := map[string][]model.EODRecord{}
	if resp == nil {
		return out
	}
	for _, r := range resp.Data {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		out[sym] = append(out[sym], r)
	}
	return out
}
