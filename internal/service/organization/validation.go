package organization

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agentdeck/internal/config"
	"agentdeck/internal/domain"
	models "agentdeck/internal/domain/models/organization"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

// requireAuthenticated rejects anonymous viewers before any storage access
func requireAuthenticated(viewer models.Viewer) error {
	if !viewer.IsAuthenticated {
		return &domain.UnauthorizedError{Message: "authentication required"}
	}
	return nil
}

// validateUpdateSet shape-checks a batch. Any violation rejects the whole set.
func validateUpdateSet(set *models.UpdateSet) error {
	if set == nil {
		return &domain.ValidationError{Message: "update set is required"}
	}

	err := validation.ValidateStruct(set,
		validation.Field(&set.Folders,
			validation.Length(0, config.MaxBatchItems),
			validation.Each(validation.By(validateFolderUpdate)),
			validation.By(uniqueFolderIDs),
		),
		validation.Field(&set.Agents,
			validation.Length(0, config.MaxBatchItems),
			validation.Each(validation.By(validateAgentUpdate)),
			validation.By(uniqueAgentIdentifiers),
		),
	)
	if err != nil {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid batch: %v", err)}
	}
	return nil
}

func validateFolderUpdate(value interface{}) error {
	u, ok := value.(models.FolderUpdate)
	if !ok {
		return errors.New("must be a folder update")
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.ID, validation.Required, validation.Min(int64(1))),
		validation.Field(&u.ParentID,
			validation.By(positiveRef),
			validation.By(func(interface{}) error {
				if u.ParentID != nil && *u.ParentID == u.ID {
					return errors.New("folder cannot be its own parent")
				}
				return nil
			}),
		),
		validation.Field(&u.SortOrder, validation.Min(0)),
	)
}

func validateAgentUpdate(value interface{}) error {
	u, ok := value.(models.AgentUpdate)
	if !ok {
		return errors.New("must be an agent update")
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.Identifier, validation.Required, validation.Length(1, config.MaxAgentNameLength)),
		validation.Field(&u.FolderID, validation.By(positiveRef)),
		validation.Field(&u.SortOrder, validation.Min(0)),
	)
}

// positiveRef accepts nil (root) or a storage id. Zero is not a folder id.
func positiveRef(value interface{}) error {
	id, _ := value.(*int64)
	if id != nil && *id <= 0 {
		return errors.New("must be a positive folder id or null")
	}
	return nil
}

// Each update must target a distinct row; concurrent writes to one row would race.
func uniqueFolderIDs(value interface{}) error {
	updates, _ := value.([]models.FolderUpdate)
	seen := make(map[int64]struct{}, len(updates))
	for _, u := range updates {
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("folder %d appears more than once", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}

func uniqueAgentIdentifiers(value interface{}) error {
	updates, _ := value.([]models.AgentUpdate)
	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if _, dup := seen[u.Identifier]; dup {
			return fmt.Errorf("agent %s appears more than once", u.Identifier)
		}
		seen[u.Identifier] = struct{}{}
	}
	return nil
}

// normalizeFolderName trims and validates a folder name
func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	err := validation.Validate(name,
		validation.Required.Error("folder name cannot be empty"),
		validation.RuneLength(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	)
	if err != nil {
		return "", &domain.ValidationError{Message: err.Error()}
	}
	return name, nil
}
