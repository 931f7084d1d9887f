package pipeline

import "errors"

// Validation taxonomy for batch runs. Folder-level errors abort the batch
// before any file is touched; ErrIdentityIncomplete is per-file and surfaces
// as an error outcome instead.
var (
	ErrFolderNotFound     = errors.New("folder does not exist")
	ErrNotADirectory      = errors.New("path is not a folder")
	ErrNoImages           = errors.New("no supported image files found in folder")
	ErrIdentityIncomplete = errors.New("cannot extract name and date from image")
)
