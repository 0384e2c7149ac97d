package badger

import (
	"encoding/json"
	"fmt"

	"github.com/codeSantiago/nospace/pkg/drive"
)

// Serialization Strategy
// ======================
//
// BadgerDB stores raw bytes, so folder and file records are serialized
// before storing and deserialized when reading. JSON is used for both:
// records are small, the schema can evolve without migration tooling, and
// the database stays inspectable with standard tools. Index entries carry
// no value at all; the key holds everything they need.

// encodeFolder serializes a folder record to JSON bytes.
func encodeFolder(folder *drive.Folder) ([]byte, error) {
	bytes, err := json.Marshal(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to encode folder %s: %w", folder.ID, err)
	}
	return bytes, nil
}

// decodeFolder deserializes a folder record from JSON bytes.
func decodeFolder(bytes []byte) (*drive.Folder, error) {
	var folder drive.Folder
	if err := json.Unmarshal(bytes, &folder); err != nil {
		return nil, fmt.Errorf("failed to decode folder record: %w", err)
	}
	return &folder, nil
}

// encodeFile serializes a file record to JSON bytes.
func encodeFile(file *drive.File) ([]byte, error) {
	bytes, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file %s: %w", file.ID, err)
	}
	return bytes, nil
}

// decodeFile deserializes a file record from JSON bytes.
func decodeFile(bytes []byte) (*drive.File, error) {
	var file drive.File
	if err := json.Unmarshal(bytes, &file); err != nil {
		return nil, fmt.Errorf("failed to decode file record: %w", err)
	}
	return &file, nil
}
