package badger

import (
	"context"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

// SaveFolder inserts or fully replaces the record with folder.ID, keeping
// the location and parent-child indexes in step within one transaction.
func (s *BadgerMetadataStore) SaveFolder(ctx context.Context, folder *drive.Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateFolder(folder); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		previous, err := getFolder(txn, folder.ID)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if previous != nil {
			if err := txn.Delete(keyLocation(previous.Depth, previous.OwnerUsername, previous.Name, previous.ID)); err != nil {
				return err
			}
			if previous.ParentID != "" && previous.ParentID != folder.ParentID {
				if err := txn.Delete(keyChild(previous.ParentID, previous.ID)); err != nil {
					return err
				}
			}
		}

		encoded, err := encodeFolder(folder)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFolder(folder.ID), encoded); err != nil {
			return err
		}
		if err := txn.Set(keyLocation(folder.Depth, folder.OwnerUsername, folder.Name, folder.ID), nil); err != nil {
			return err
		}
		if folder.ParentID != "" {
			return txn.Set(keyChild(folder.ParentID, folder.ID), nil)
		}
		return nil
	})
}

// UpdateFolderName changes only the folder's name and route, moving its
// location index entry accordingly.
func (s *BadgerMetadataStore) UpdateFolderName(ctx context.Context, id, newName, newRoute string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		folder, err := getFolder(txn, id)
		if err == badger.ErrKeyNotFound {
			return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(keyLocation(folder.Depth, folder.OwnerUsername, folder.Name, folder.ID)); err != nil {
			return err
		}

		folder.Name = newName
		folder.Route = newRoute

		encoded, err := encodeFolder(folder)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFolder(folder.ID), encoded); err != nil {
			return err
		}
		return txn.Set(keyLocation(folder.Depth, folder.OwnerUsername, folder.Name, folder.ID), nil)
	})
}

// FindFolder retrieves a folder by id.
func (s *BadgerMetadataStore) FindFolder(ctx context.Context, id string) (*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var folder *drive.Folder
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getFolder(txn, id)
		if err == badger.ErrKeyNotFound {
			return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
		}
		if err != nil {
			return err
		}
		folder = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// FindFolderAt retrieves a folder by (depth, name, owner username); the
// earliest created wins when sibling-name duplicates exist.
func (s *BadgerMetadataStore) FindFolderAt(ctx context.Context, depth int, name, ownerUsername string) (*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var earliest *drive.Folder
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := keyLocationPrefix(depth, ownerUsername, name)

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			candidate, err := getFolder(txn, idFromKey(it.Item().Key()))
			if err == badger.ErrKeyNotFound {
				// Index entry without a record; ignore it here, the next
				// write to this folder id will rebuild the index.
				continue
			}
			if err != nil {
				return err
			}
			// Names may contain the key separator, so the prefix scan can
			// overmatch. The decoded record is authoritative.
			if candidate.Depth != depth || candidate.Name != name || candidate.OwnerUsername != ownerUsername {
				continue
			}
			if earliest == nil || earlierFolder(candidate, earliest) {
				earliest = candidate
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if earliest == nil {
		return nil, &store.StoreError{
			Code:    store.ErrNotFound,
			Message: "no folder matches the given depth, name and owner",
			Ref:     name,
		}
	}
	return earliest, nil
}

// ChildFolders lists direct children of parentID ordered by creation then id.
func (s *BadgerMetadataStore) ChildFolders(ctx context.Context, parentID string) ([]*drive.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children := make([]*drive.Folder, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanIndex(txn, keyChildPrefix(parentID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			child, err := getFolder(txn, id)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			children = append(children, child)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(children, func(i, j int) bool {
		return earlierFolder(children[i], children[j])
	})
	return children, nil
}

// DeleteFolder removes the folder and its whole subtree (descendant folders
// and every contained file) in one transaction.
func (s *BadgerMetadataStore) DeleteFolder(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		root, err := getFolder(txn, id)
		if err == badger.ErrKeyNotFound {
			return &store.StoreError{Code: store.ErrNotFound, Message: "folder not found", Ref: id}
		}
		if err != nil {
			return err
		}

		// Walk breadth-first collecting every folder in the subtree before
		// touching anything, so deletes never race the scans.
		subtree := []*drive.Folder{root}
		for cursor := 0; cursor < len(subtree); cursor++ {
			childIDs, err := scanIndex(txn, keyChildPrefix(subtree[cursor].ID))
			if err != nil {
				return err
			}
			for _, childID := range childIDs {
				child, err := getFolder(txn, childID)
				if err == badger.ErrKeyNotFound {
					continue
				}
				if err != nil {
					return err
				}
				subtree = append(subtree, child)
			}
		}

		for _, folder := range subtree {
			fileIDs, err := scanIndex(txn, keyFolderFilePrefix(folder.ID))
			if err != nil {
				return err
			}
			for _, fileID := range fileIDs {
				if err := txn.Delete(keyFile(fileID)); err != nil {
					return err
				}
				if err := txn.Delete(keyFolderFile(folder.ID, fileID)); err != nil {
					return err
				}
			}

			if err := txn.Delete(keyFolder(folder.ID)); err != nil {
				return err
			}
			if err := txn.Delete(keyLocation(folder.Depth, folder.OwnerUsername, folder.Name, folder.ID)); err != nil {
				return err
			}
			if folder.ParentID != "" {
				if err := txn.Delete(keyChild(folder.ParentID, folder.ID)); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// getFolder loads and decodes a folder record inside a transaction. Returns
// badger.ErrKeyNotFound untranslated so callers pick their own error shape.
func getFolder(txn *badger.Txn, id string) (*drive.Folder, error) {
	item, err := txn.Get(keyFolder(id))
	if err != nil {
		return nil, err
	}

	var folder *drive.Folder
	err = item.Value(func(val []byte) error {
		decoded, err := decodeFolder(val)
		if err != nil {
			return err
		}
		folder = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// scanIndex collects the trailing identifiers of every key under prefix.
func scanIndex(txn *badger.Txn, prefix []byte) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, idFromKey(it.Item().Key()))
	}
	return ids, nil
}

// earlierFolder orders folders by creation time, then id for stability.
func earlierFolder(a, b *drive.Folder) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
