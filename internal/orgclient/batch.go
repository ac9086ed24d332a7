package orgclient

import (
	models "agentdeck/internal/domain/models/organization"
)

// Batch accumulates placement updates before they are sent. A later update
// for the same row replaces the earlier one; rows keep their first position.
type Batch struct {
	folders     []models.FolderUpdate
	agents      []models.AgentUpdate
	folderIndex map[int64]int
	agentIndex  map[string]int
}

// NewBatch creates an empty batch
func NewBatch() *Batch {
	return &Batch{
		folderIndex: make(map[int64]int),
		agentIndex:  make(map[string]int),
	}
}

// AddFolder records a folder placement
func (b *Batch) AddFolder(u models.FolderUpdate) {
	if i, ok := b.folderIndex[u.ID]; ok {
		b.folders[i] = u
		return
	}
	b.folderIndex[u.ID] = len(b.folders)
	b.folders = append(b.folders, u)
}

// AddAgent records an agent placement
func (b *Batch) AddAgent(u models.AgentUpdate) {
	if i, ok := b.agentIndex[u.Identifier]; ok {
		b.agents[i] = u
		return
	}
	b.agentIndex[u.Identifier] = len(b.agents)
	b.agents = append(b.agents, u)
}

// Merge adds every update of set
func (b *Batch) Merge(set *models.UpdateSet) {
	if set == nil {
		return
	}
	for _, u := range set.Folders {
		b.AddFolder(u)
	}
	for _, u := range set.Agents {
		b.AddAgent(u)
	}
}

// Len returns the number of distinct rows in the batch
func (b *Batch) Len() int { return len(b.folders) + len(b.agents) }

// UpdateSet returns the accumulated updates as a wire payload
func (b *Batch) UpdateSet() *models.UpdateSet {
	set := &models.UpdateSet{}
	if len(b.folders) > 0 {
		set.Folders = append([]models.FolderUpdate(nil), b.folders...)
	}
	if len(b.agents) > 0 {
		set.Agents = append([]models.AgentUpdate(nil), b.agents...)
	}
	return set
}

// Reset empties the batch
func (b *Batch) Reset() {
	b.folders, b.agents = nil, nil
	clear(b.folderIndex)
	clear(b.agentIndex)
}
