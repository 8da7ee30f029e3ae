package types

import "fmt"

// Slot resolves the dual-column component reference of a scenario link
// row. Exactly one of the scenario-local id and the public id is set.
type Slot struct {
	ID           int64
	FromScenario bool
}

func ScenarioOwned(id int64) Slot { return Slot{ID: id, FromScenario: true} }
func PublicOwned(id int64) Slot   { return Slot{ID: id, FromScenario: false} }

// SlotFromColumns folds the two nullable columns of a component slot
// into a resolved reference. Both set or both empty means the row is
// corrupt and the caller must fail the operation.
func SlotFromColumns(scenarioID, publicID *int64) (Slot, error) {
	switch {
	case scenarioID != nil && publicID != nil:
		return Slot{}, fmt.Errorf("slot references both scenario id %d and public id %d", *scenarioID, *publicID)
	case scenarioID != nil:
		return ScenarioOwned(*scenarioID), nil
	case publicID != nil:
		return PublicOwned(*publicID), nil
	default:
		return Slot{}, fmt.Errorf("slot references neither a scenario nor a public id")
	}
}

// Columns is the inverse of SlotFromColumns.
func (s Slot) Columns() (scenarioID, publicID *int64) {
	if s.FromScenario {
		return &s.ID, nil
	}
	return nil, &s.ID
}

// OptionalSlotFromColumns is SlotFromColumns for slots that may be
// legitimately empty, such as the service of an urban object.
func OptionalSlotFromColumns(scenarioID, publicID *int64) (*Slot, error) {
	if scenarioID == nil && publicID == nil {
		return nil, nil
	}
	s, err := SlotFromColumns(scenarioID, publicID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
