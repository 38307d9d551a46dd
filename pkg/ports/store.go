package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MissionStore defines the interface for persisting mission records.
type MissionStore interface {
	// Save persists the mission under its ID, replacing any previous record.
	Save(ctx context.Context, mission *domain.Mission) error

	// Load retrieves a mission by ID.
	// Returns domain.ErrMissionNotFound if the mission does not exist.
	Load(ctx context.Context, id string) (*domain.Mission, error)

	// List returns the IDs of every stored mission.
	List(ctx context.Context) ([]string, error)

	// Delete removes a mission. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}
