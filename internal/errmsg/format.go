// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"fmt"

	"github.com/llehouerou/wavestore/internal/storage"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalog operations
	OpImport          Op = "import"
	OpPlayableShow    Op = "show playable"
	OpPlayableUpdate  Op = "update playable"
	OpPlayableDelete  Op = "delete playable"
	OpLibraryList     Op = "list library"
	OpArtistRename    Op = "rename artist"
	OpAlbumRename     Op = "rename album"
	OpGenreRename     Op = "rename genre"
	OpImportDiscover  Op = "find audio files"
	OpImportReadFile  Op = "read file tags"
	OpSearch          Op = "search"
	OpSearchRebuild   Op = "rebuild search index"
	OpSearchVerify    Op = "verify search index"
	OpPruneOrphans    Op = "prune orphans"
	OpStats           Op = "collect statistics"
	OpLikeToggle      Op = "update likes"
	OpLikedList       Op = "list liked playables"
	OpTagAdd          Op = "tag playable"
	OpTagRemove       Op = "untag playable"
	OpTagList         Op = "list tags"
	OpTagRename       Op = "rename tag"
	OpTagDelete       Op = "delete tag"
	OpPlaylistCreate  Op = "create playlist"
	OpPlaylistRename  Op = "rename playlist"
	OpPlaylistDelete  Op = "delete playlist"
	OpPlaylistList    Op = "list playlists"
	OpPlaylistShow    Op = "show playlist"
	OpPlaylistAdd     Op = "add to playlist"
	OpPlaylistRemove  Op = "remove from playlist"
	OpPlaylistReorder Op = "reorder playlist"
	OpPlaylistMove    Op = "move playlist"
	OpPlaylistSmart   Op = "define smart playlist"
	OpPlaylistVerify  Op = "verify playlist order"

	// Folder operations
	OpFolderCreate Op = "create folder"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Failed to %s: %v (%s)", op, err, hint)
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Failed to %s '%s': %v (%s)", op, context, err, hint)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Hint explains a storage error kind to the user. It is empty for errors
// that carry no kind.
func Hint(err error) string {
	switch storage.KindOf(err) {
	case storage.ErrNotFound:
		return "check the id with ls or search"
	case storage.ErrReferentialIntegrity:
		return "the name or source is already taken, or refers to something missing"
	case storage.ErrKindMismatch:
		return "not allowed for this kind of playlist"
	case storage.ErrOrderingConflict:
		return "position out of range"
	case storage.ErrStorageUnavailable:
		return "the database is locked or unreadable, try again"
	}
	return ""
}
