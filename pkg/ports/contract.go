package ports

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunMissionStoreContract runs a suite of tests to verify that a MissionStore
// implementation adheres to the defined interface contract.
func RunMissionStoreContract(t *testing.T, store MissionStore) {
	ctx := context.Background()

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Create a finished mission
		m := domain.NewMission("my_rob", []domain.Task{domain.NewTask("navigate_to", "p9")})
		m.Plan = domain.Plan{domain.NewTask("moveto", "p3"), domain.NewTask("cross", "door3", "p4")}
		m.Executed = 1
		m.FailedStep = 1
		m.Error = "door jammed"
		m.Initial = domain.NewWorldState("p1", map[string]domain.DoorStatus{"door1": domain.DoorClosed}, map[string]string{"box1": "p4"}, "")
		m.Finish(domain.OutcomeFailed)

		// 2. Save
		err := store.Save(ctx, m)
		require.NoError(t, err, "Save should not return error")
		defer func() { _ = store.Delete(ctx, m.ID) }()

		// 3. Load
		loaded, err := store.Load(ctx, m.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, m.ID, loaded.ID)
		assert.Equal(t, m.RobotID, loaded.RobotID)
		assert.Equal(t, m.Tasks, loaded.Tasks)
		assert.Equal(t, m.Plan, loaded.Plan)
		assert.Equal(t, domain.OutcomeFailed, loaded.Outcome)
		assert.Equal(t, 1, loaded.FailedStep)
		assert.Equal(t, "door jammed", loaded.Error)
		require.NotNil(t, loaded.Initial)
		assert.Equal(t, "p1", loaded.Initial.RobotAt())
		assert.Equal(t, domain.DoorClosed, loaded.Initial.Doors["door1"])
		assert.True(t, m.StartedAt.Equal(loaded.StartedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-mission")
		assert.ErrorIs(t, err, domain.ErrMissionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		m := domain.NewMission("my_rob", nil)
		require.NoError(t, store.Save(ctx, m))

		err := store.Delete(ctx, m.ID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, m.ID)
		assert.ErrorIs(t, err, domain.ErrMissionNotFound, "Load after Delete should return ErrMissionNotFound")

		assert.NoError(t, store.Delete(ctx, m.ID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		m1 := domain.NewMission("my_rob", nil)
		m2 := domain.NewMission("my_rob", nil)
		require.NoError(t, store.Save(ctx, m1))
		require.NoError(t, store.Save(ctx, m2))
		defer func() {
			_ = store.Delete(ctx, m1.ID)
			_ = store.Delete(ctx, m2.ID)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, m1.ID)
		assert.Contains(t, ids, m2.ID)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		m := domain.NewMission("my_rob", nil)
		require.NoError(t, store.Save(ctx, m))
		defer func() { _ = store.Delete(ctx, m.ID) }()

		m.Outcome = domain.OutcomeCompleted

		loaded, err := store.Load(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomePending, loaded.Outcome, "mutating after Save must not change the stored record")
	})
}
