package organization

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	models "agentdeck/internal/domain/models/organization"
)

// PathSeparator joins folder names in an address.
const PathSeparator = "/"

// PathFromFolder returns the folder names from the root down to folderID.
// A missing lookup truncates the path at that point.
func PathFromFolder(folderID int64, folderByID map[int64]*models.Folder) []string {
	f, ok := folderByID[folderID]
	if !ok {
		return nil
	}

	names := []string{f.Name}
	seen := map[int64]struct{}{folderID: {}}
	for f.ParentID != nil && len(names) <= len(folderByID) {
		parent, ok := folderByID[*f.ParentID]
		if !ok {
			break
		}
		if _, dup := seen[parent.ID]; dup {
			break
		}
		seen[parent.ID] = struct{}{}
		names = append(names, parent.Name)
		f = parent
	}

	slices.Reverse(names)
	return names
}

// FolderFromPath walks name segments from the root and returns the matching
// folder id. Sibling names are not guaranteed unique; the first match in
// sibling order wins. No folders are created. Zero segments address the root
// and return (RootID, true).
func FolderFromPath(segments []string, idx *Index) (int64, bool) {
	current := models.RootID
	for _, segment := range segments {
		next, found := models.RootID, false
		for _, childID := range idx.ChildFolderIDs[current] {
			if idx.FolderByID[childID].Name == segment {
				next, found = childID, true
				break
			}
		}
		if !found {
			return models.RootID, false
		}
		current = next
	}
	return current, true
}

// EncodePath percent-encodes each name independently and joins them with "/".
func EncodePath(names []string) string {
	encoded := make([]string, len(names))
	for i, name := range names {
		encoded[i] = url.PathEscape(name)
	}
	return strings.Join(encoded, PathSeparator)
}

// DecodePath splits an address on "/" and decodes each segment. Leading and
// trailing separators are ignored; an empty address is the root.
func DecodePath(address string) ([]string, error) {
	address = strings.Trim(address, PathSeparator)
	if address == "" {
		return nil, nil
	}

	parts := strings.Split(address, PathSeparator)
	names := make([]string, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("folder address contains an empty segment at position %d", i)
		}
		name, err := url.PathUnescape(part)
		if err != nil {
			return nil, fmt.Errorf("folder address segment %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

// FolderAddress returns the encoded address of folderID.
func FolderAddress(folderID int64, folderByID map[int64]*models.Folder) string {
	return EncodePath(PathFromFolder(folderID, folderByID))
}
