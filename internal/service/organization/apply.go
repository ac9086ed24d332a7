package organization

import (
	"slices"

	models "agentdeck/internal/domain/models/organization"
)

// ApplyUpdateSet returns copies of folders and agents with set applied.
// Clients use it to reflect a move before persistence completes; updates for
// rows that are not present are ignored.
func ApplyUpdateSet(folders []models.Folder, agents []models.Agent, set *models.UpdateSet) ([]models.Folder, []models.Agent) {
	folders = slices.Clone(folders)
	agents = slices.Clone(agents)
	if set.Empty() {
		return folders, agents
	}

	folderPos := make(map[int64]int, len(folders))
	for i := range folders {
		folderPos[folders[i].ID] = i
	}
	for _, u := range set.Folders {
		if i, ok := folderPos[u.ID]; ok {
			folders[i].ParentID = cloneRef(u.ParentID)
			folders[i].SortOrder = u.SortOrder
		}
	}

	agentPos := make(map[string]int, len(agents))
	for i := range agents {
		agentPos[agents[i].Identifier()] = i
		// Name matches are accepted too, as on the server
		if _, taken := agentPos[agents[i].Name]; !taken {
			agentPos[agents[i].Name] = i
		}
	}
	for _, u := range set.Agents {
		if i, ok := agentPos[u.Identifier]; ok {
			agents[i].FolderID = cloneRef(u.FolderID)
			agents[i].SortOrder = u.SortOrder
		}
	}

	return folders, agents
}

func cloneRef(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
