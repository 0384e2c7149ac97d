package store

import "github.com/codeSantiago/nospace/pkg/drive"

// ValidateFolder checks that a folder record carries everything a backend
// needs to persist it. Every backend runs this before writing, so the
// ErrInvalidArgument contract is identical across implementations.
func ValidateFolder(folder *drive.Folder) error {
	switch {
	case folder == nil:
		return &StoreError{Code: ErrInvalidArgument, Message: "folder is nil"}
	case folder.ID == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "folder id is required"}
	case folder.Name == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "folder name is required", Ref: folder.ID}
	case folder.Route == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "folder route is required", Ref: folder.ID}
	case folder.OwnerID == "" || folder.OwnerUsername == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "folder owner is required", Ref: folder.ID}
	case folder.Depth < 0:
		return &StoreError{Code: ErrInvalidArgument, Message: "folder depth cannot be negative", Ref: folder.ID}
	}
	return nil
}

// ValidateFile checks that a file record carries everything a backend needs
// to persist it.
func ValidateFile(file *drive.File) error {
	switch {
	case file == nil:
		return &StoreError{Code: ErrInvalidArgument, Message: "file is nil"}
	case file.ID == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "file id is required"}
	case file.Route == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "file route is required", Ref: file.ID}
	case file.Filename == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "filename is required", Ref: file.ID}
	case file.FolderID == "":
		return &StoreError{Code: ErrInvalidArgument, Message: "containing folder id is required", Ref: file.ID}
	}
	return nil
}
