package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotFile is the name of the last-applied manifest under the install root.
const SnapshotFile = "client-manifest.json"

// SaveSnapshot writes doc to <root>/client-manifest.json.
func SaveSnapshot(root string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling manifest snapshot: %w", err)
	}
	tmp := filepath.Join(root, SnapshotFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing manifest snapshot: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(root, SnapshotFile)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing manifest snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the last applied manifest. Returns nil, nil if none has
// been written yet.
func LoadSnapshot(root string) (*Document, error) {
	data, err := os.ReadFile(filepath.Join(root, SnapshotFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest snapshot: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest snapshot: %w", err)
	}
	return &doc, nil
}
