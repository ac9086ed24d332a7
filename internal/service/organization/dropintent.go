package organization

import (
	models "agentdeck/internal/domain/models/organization"
)

// ClassifyDrop maps a pointer position over a target's vertical bounds to a
// drop intent: the top quarter is before, the bottom quarter is after and the
// middle half is inside. Only folders accept inside; over any other target the
// middle half splits at the midpoint into before and after.
func ClassifyDrop(pointerY, top, height float64, targetIsFolder bool) models.DropIntent {
	if height <= 0 {
		return models.DropAfter
	}

	offset := (pointerY - top) / height
	switch {
	case offset < 0.25:
		return models.DropBefore
	case offset >= 0.75:
		return models.DropAfter
	case targetIsFolder:
		return models.DropInside
	case offset < 0.5:
		return models.DropBefore
	default:
		return models.DropAfter
	}
}
