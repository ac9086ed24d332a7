package organization

import (
	models "agentdeck/internal/domain/models/organization"
)

// Prune reduces active rows to what viewer may see. Viewers allowed to see
// private items get everything. Otherwise only PUBLIC agents remain, and a
// folder remains only if a remaining agent sits in it or below it, so every
// kept folder has a kept path back to the root.
func Prune(folders []models.Folder, agents []models.Agent, viewer models.Viewer) ([]models.Folder, []models.Agent) {
	if viewer.CanSeePrivate {
		return folders, agents
	}

	folderByID := make(map[int64]*models.Folder, len(folders))
	for i := range folders {
		folderByID[folders[i].ID] = &folders[i]
	}

	publicAgents := make([]models.Agent, 0, len(agents))
	keep := make(map[int64]struct{})
	for _, a := range agents {
		if a.Visibility != models.VisibilityPublic {
			continue
		}
		publicAgents = append(publicAgents, a)

		if a.FolderID == nil {
			continue
		}
		if _, ok := folderByID[*a.FolderID]; !ok {
			continue
		}
		if _, done := keep[*a.FolderID]; done {
			continue
		}
		keep[*a.FolderID] = struct{}{}
		for id := range AncestorIDs(*a.FolderID, folderByID) {
			keep[id] = struct{}{}
		}
	}

	visibleFolders := make([]models.Folder, 0, len(keep))
	for _, f := range folders {
		if _, ok := keep[f.ID]; ok {
			visibleFolders = append(visibleFolders, f)
		}
	}

	return visibleFolders, publicAgents
}
