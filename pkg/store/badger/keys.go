package badger

import "strconv"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the data types
// into logical namespaces. This design:
//   - Prevents key collisions between data types
//   - Enables efficient range scans (children of a folder, files in a folder)
//   - Makes the database structure self-documenting
//
// Key Namespace Prefixes:
//
// Data Type          Prefix   Key Format                                Value
// ===========================================================================
// Folder Data        "fo:"    fo:<folderID>                             Folder (JSON)
// File Data          "fi:"    fi:<fileID>                               File (JSON)
// Child Folders      "c:"     c:<parentID>:<childID>                    empty
// Folder Files       "fc:"    fc:<folderID>:<fileID>                    empty
// Location Index     "loc:"   loc:<depth>:<ownerUsername>:<name>:<id>   empty
//
// Identifiers never contain ":", so a scan over "c:<parentID>:" or
// "fc:<folderID>:" is unambiguous and the id is always the segment after
// the final ":". Folder names and usernames MAY contain ":", so a location
// scan can overmatch (searching name "a" also hits name "a:b"); readers of
// the location index must re-check the decoded folder before accepting it.

const (
	// prefixFolder is the key prefix for folder records
	prefixFolder = "fo:"

	// prefixFile is the key prefix for file records
	prefixFile = "fi:"

	// prefixChild is the key prefix for parent-to-child folder mappings
	prefixChild = "c:"

	// prefixFolderFile is the key prefix for folder-to-file mappings
	prefixFolderFile = "fc:"

	// prefixLocation is the key prefix for the (depth, owner, name) index
	prefixLocation = "loc:"
)

// keyFolder generates the key for a folder record.
//
// Format: "fo:<folderID>"
func keyFolder(id string) []byte {
	return []byte(prefixFolder + id)
}

// keyFile generates the key for a file record.
//
// Format: "fi:<fileID>"
func keyFile(id string) []byte {
	return []byte(prefixFile + id)
}

// keyChild generates the key for a child entry under a parent folder.
//
// Format: "c:<parentID>:<childID>"
func keyChild(parentID, childID string) []byte {
	return []byte(prefixChild + parentID + ":" + childID)
}

// keyChildPrefix generates the scan prefix for all children of a parent.
//
// Format: "c:<parentID>:"
func keyChildPrefix(parentID string) []byte {
	return []byte(prefixChild + parentID + ":")
}

// keyFolderFile generates the key for a file entry under a folder.
//
// Format: "fc:<folderID>:<fileID>"
func keyFolderFile(folderID, fileID string) []byte {
	return []byte(prefixFolderFile + folderID + ":" + fileID)
}

// keyFolderFilePrefix generates the scan prefix for all files in a folder.
//
// Format: "fc:<folderID>:"
func keyFolderFilePrefix(folderID string) []byte {
	return []byte(prefixFolderFile + folderID + ":")
}

// keyLocation generates the key for a folder's location index entry.
//
// Format: "loc:<depth>:<ownerUsername>:<name>:<folderID>"
func keyLocation(depth int, ownerUsername, name, id string) []byte {
	return []byte(prefixLocation + strconv.Itoa(depth) + ":" + ownerUsername + ":" + name + ":" + id)
}

// keyLocationPrefix generates the scan prefix for folders at a location.
//
// Format: "loc:<depth>:<ownerUsername>:<name>:"
//
// Because names and usernames may contain ":", matches from this prefix are
// candidates only; callers must verify the decoded folder's depth, name and
// owner before accepting it.
func keyLocationPrefix(depth int, ownerUsername, name string) []byte {
	return []byte(prefixLocation + strconv.Itoa(depth) + ":" + ownerUsername + ":" + name + ":")
}

// idFromKey extracts the trailing identifier from an index key.
//
// Identifiers never contain ":", so the id is everything after the final
// ":" regardless of what the middle segments contain.
func idFromKey(key []byte) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return string(key[i+1:])
		}
	}
	return string(key)
}
