package badger

import (
	"context"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/codeSantiago/nospace/pkg/drive"
	"github.com/codeSantiago/nospace/pkg/store"
)

// SaveFile inserts or fully replaces the record with file.ID after checking
// the containing folder exists.
func (s *BadgerMetadataStore) SaveFile(ctx context.Context, file *drive.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateFile(file); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyFolder(file.FolderID)); err == badger.ErrKeyNotFound {
			return &store.StoreError{Code: store.ErrNotFound, Message: "containing folder not found", Ref: file.FolderID}
		} else if err != nil {
			return err
		}

		previous, err := getFile(txn, file.ID)
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if previous != nil && previous.FolderID != file.FolderID {
			if err := txn.Delete(keyFolderFile(previous.FolderID, previous.ID)); err != nil {
				return err
			}
		}

		encoded, err := encodeFile(file)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFile(file.ID), encoded); err != nil {
			return err
		}
		return txn.Set(keyFolderFile(file.FolderID, file.ID), nil)
	})
}

// FindFile retrieves a file by id.
func (s *BadgerMetadataStore) FindFile(ctx context.Context, id string) (*drive.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var file *drive.File
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getFile(txn, id)
		if err == badger.ErrKeyNotFound {
			return &store.StoreError{Code: store.ErrNotFound, Message: "file not found", Ref: id}
		}
		if err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// FilesInFolder lists the files directly inside folderID ordered by upload
// time then id.
func (s *BadgerMetadataStore) FilesInFolder(ctx context.Context, folderID string) ([]*drive.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := make([]*drive.File, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := scanIndex(txn, keyFolderFilePrefix(folderID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			file, err := getFile(txn, id)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			files = append(files, file)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].UploadedAt.Equal(files[j].UploadedAt) {
			return files[i].ID < files[j].ID
		}
		return files[i].UploadedAt.Before(files[j].UploadedAt)
	})
	return files, nil
}

// getFile loads and decodes a file record inside a transaction. Returns
// badger.ErrKeyNotFound untranslated so callers pick their own error shape.
func getFile(txn *badger.Txn, id string) (*drive.File, error) {
	item, err := txn.Get(keyFile(id))
	if err != nil {
		return nil, err
	}

	var file *drive.File
	err = item.Value(func(val []byte) error {
		decoded, err := decodeFile(val)
		if err != nil {
			return err
		}
		file = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}
