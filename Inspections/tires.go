package Inspections

// TireConfiguration is the declared wheel position count of a vehicle. It
// decides which position IDs a submission may use.
type TireConfiguration int

const (
	ConfigFour TireConfiguration = 4
	ConfigSix  TireConfiguration = 6
	ConfigTen  TireConfiguration = 10
)

// Canonical position IDs per configuration. 1/2 are the front axle, 5/7 the
// rear axle, 6/8 the extra rear positions on six wheel trucks.
var configPositionIDs = map[TireConfiguration][]int{
	ConfigFour: {1, 2, 5, 7},
	ConfigSix:  {1, 2, 5, 6, 7, 8},
	ConfigTen:  {1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
}

// tireSlotIndex maps a position ID to its slot in the 10 column tire block
// of the inspection row.
var tireSlotIndex = map[int]int{
	1: 0, 2: 1, 3: 2, 4: 3, 5: 4,
	6: 5, 7: 6, 8: 7, 9: 8, 10: 9,
}

// ConfigurationForCount validates a declared tire count. Zero falls back to
// the four wheel default.
func ConfigurationForCount(count int) (TireConfiguration, error) {
	switch count {
	case 0, 4:
		return ConfigFour, nil
	case 6:
		return ConfigSix, nil
	case 10:
		return ConfigTen, nil
	}
	return 0, &InvalidTireConfigurationError{
		Reason: "tire count must be 4, 6 or 10",
	}
}

// PositionIDs returns the configuration's allowed position IDs in canonical
// order.
func (c TireConfiguration) PositionIDs() []int {
	ids := configPositionIDs[c]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

// Allows reports whether the position ID belongs to the configuration.
func (c TireConfiguration) Allows(id int) bool {
	for _, allowed := range configPositionIDs[c] {
		if allowed == id {
			return true
		}
	}
	return false
}

// TireCheck is one observed wheel position of a submission.
type TireCheck struct {
	ID       int  `json:"id"`
	FP       bool `json:"fp"`       // full pressure check
	PE       bool `json:"pe"`       // external pressure check
	PA       bool `json:"pa"`       // tightened lug nuts
	Desgaste bool `json:"desgaste"` // visible wear
}

// NormalizeTires maps a submission onto the configuration's canonical slot
// order. The result always has exactly one slot per allowed position ID, in
// canonical order, with nil for positions the submission omitted. IDs
// outside the allowed set and duplicated IDs are rejected.
func NormalizeTires(submitted []TireCheck, config TireConfiguration) ([]*TireCheck, error) {
	if len(configPositionIDs[config]) == 0 {
		return nil, &InvalidTireConfigurationError{Reason: "unknown tire configuration"}
	}

	var invalid []int
	seen := make(map[int]bool)
	byID := make(map[int]TireCheck, len(submitted))
	for _, tire := range submitted {
		if !config.Allows(tire.ID) {
			invalid = append(invalid, tire.ID)
			continue
		}
		if seen[tire.ID] {
			return nil, &InvalidTireConfigurationError{Configuration: config, DuplicateID: tire.ID}
		}
		seen[tire.ID] = true
		byID[tire.ID] = tire
	}

	if len(invalid) > 0 {
		return nil, &InvalidTireConfigurationError{Configuration: config, InvalidIDs: invalid}
	}

	ids := configPositionIDs[config]
	normalized := make([]*TireCheck, len(ids))
	for i, id := range ids {
		if tire, ok := byID[id]; ok {
			copied := tire
			normalized[i] = &copied
		}
	}
	return normalized, nil
}

// TireRowSlots spreads a normalized list over the fixed 10 slot layout of
// the inspection row, so the exit row always writes llanta 1 through
// llanta 10 regardless of configuration.
func TireRowSlots(normalized []*TireCheck) [10]*TireCheck {
	var slots [10]*TireCheck
	for _, tire := range normalized {
		if tire == nil {
			continue
		}
		if slot, ok := tireSlotIndex[tire.ID]; ok {
			slots[slot] = tire
		}
	}
	return slots
}
