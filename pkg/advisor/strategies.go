package advisor

import (
	"encoding/json"
	"os"
)

// StrategySchema returns the strategy library document as stored on disk.
// The file is read on every call.
func (c *Core) StrategySchema() (json.RawMessage, error) {
	return LoadStrategySchema(c.schemaPath)
}

// LoadStrategySchema reads and checks a strategy library document.
func LoadStrategySchema(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, NewError(ErrCodeSchema, "strategy schema path is not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(ErrCodeSchema, "read strategy schema", err)
	}
	if !json.Valid(data) {
		return nil, NewError(ErrCodeSchema, "strategy schema is not valid JSON")
	}
	return json.RawMessage(data), nil
}

// Strategies decodes the strategy library.
func (c *Core) Strategies() ([]Strategy, error) {
	raw, err := c.StrategySchema()
	if err != nil {
		return nil, err
	}
	return DecodeStrategies(raw)
}

// DecodeStrategies extracts the strategy list from a library document.
func DecodeStrategies(raw json.RawMessage) ([]Strategy, error) {
	var library StrategyLibrary
	if err := json.Unmarshal(raw, &library); err != nil {
		return nil, WrapError(ErrCodeSchema, "decode strategy schema", err)
	}
	return library.Strategies, nil
}
