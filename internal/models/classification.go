package models

// ClassificationRow is one row of the classification taxonomy sheet.
type ClassificationRow struct {
	Subject    string `json:"subject"`
	MajorUnit  string `json:"major_unit"`
	MinorUnit  string `json:"minor_unit"`
	DetailType string `json:"detail_type"`
}

// ClassificationTree is the taxonomy arranged for scope selection:
// subject -> major unit -> minor units.
type ClassificationTree map[string]map[string][]string

// UnitRollup is a mastery aggregate at one node of the topic tree. Leaf nodes
// carry the constituent detail-type count; interior nodes nest their children.
type UnitRollup struct {
	Name             string       `json:"name"`
	DisplayScore     float64      `json:"display_score"`
	Accuracy         float64      `json:"accuracy"`
	TotalAttempts    int          `json:"total_attempts"`
	ConstituentTypes int          `json:"constituent_types"`
	SubUnits         []UnitRollup `json:"sub_units,omitempty"`
}
