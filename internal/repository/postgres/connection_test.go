package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "agentdeck/internal/domain/models/organization"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("test_")
	assert.Equal(t, "test_folders", tables.Folders)
	assert.Equal(t, "test_agents", tables.Agents)
}

func TestLifecycleClause(t *testing.T) {
	assert.Equal(t, "deleted_at IS NULL", lifecycleClause(models.LifecycleActive))
	assert.Equal(t, "deleted_at IS NOT NULL", lifecycleClause(models.LifecycleRecycleBin))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "CREATE TABLE x (", firstLine("CREATE TABLE x (\n\tid INT\n)"))
	assert.Equal(t, "DROP TABLE x", firstLine("DROP TABLE x"))
}
