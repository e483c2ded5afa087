package refresh

// Outcome records the success flag for one refresh target.
type Outcome struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
}

// Result aggregates one orchestration run. Repositories holds one outcome
// per configured repository in configured order; Services holds the single
// aggregate outcome for the restart batch, or nothing when no services are
// configured.
type Result struct {
	Success      bool      `json:"success"`
	Repositories []Outcome `json:"repositories"`
	Services     []Outcome `json:"services"`
}
