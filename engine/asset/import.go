package asset

import (
	"encoding/json"
	"fmt"
)

// ImportData is the serialized form of an asset as stored in a bundle's import folder.
type ImportData struct {
	// Type selects the constructor in the Registry.
	Type string `json:"__type__"`
	Name string `json:"name"`
	// Deps lists the uuids this asset needs before it is usable.
	Deps []string `json:"deps,omitempty"`
	// Native is the extension of the native payload stored next to the asset, if any.
	Native string `json:"native,omitempty"`
	// AsyncNative defers the native payload until PostLoadNative is called.
	AsyncNative bool `json:"asyncNative,omitempty"`
	// AutoRelease releases the dependencies of a scene when it is replaced.
	AutoRelease bool `json:"autoRelease,omitempty"`
	// Content is the type specific payload.
	Content json.RawMessage `json:"content,omitempty"`
}

// DecodeImportData decodes a serialized asset.
//
// Parameters:
//   - data: the json payload
//
// Returns:
//   - *ImportData: the decoded asset description
//   - error: error if the payload is not valid json or names no type
func DecodeImportData(data []byte) (*ImportData, error) {
	var d ImportData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to decode asset json: %w", err)
	}
	if d.Type == "" {
		return nil, fmt.Errorf("asset json has no __type__")
	}
	return &d, nil
}

// decodeContent unmarshals the content payload into v. An empty payload leaves v untouched.
func (d *ImportData) decodeContent(v any) error {
	if len(d.Content) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Content, v); err != nil {
		return fmt.Errorf("failed to decode %s content: %w", d.Type, err)
	}
	return nil
}
