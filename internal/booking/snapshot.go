package booking

import "time"

// Snapshot is the serializable form of a Flow, stored per draft so an
// in-progress wizard survives page reloads.
type Snapshot struct {
	ID                 string      `json:"id"`
	UserID             string      `json:"user_id"`
	Draft              Draft       `json:"draft"`
	Step               Step        `json:"step"`
	SessionTypeSkipped bool        `json:"session_type_skipped"`
	Preselect          SessionType `json:"preselect,omitempty"`
	PriceVideo         int64       `json:"price_video"`
	Price              int64       `json:"price"`
}

// Snapshot captures the flow state.
func (f *Flow) Snapshot() Snapshot {
	return Snapshot{
		ID:                 f.id,
		UserID:             f.userID,
		Draft:              f.draft,
		Step:               f.step,
		SessionTypeSkipped: f.skipped,
		Preselect:          f.preselect,
		PriceVideo:         f.priceVideo,
		Price:              f.Price(),
	}
}

// Restore rebuilds a flow from a stored snapshot.
func Restore(s Snapshot) *Flow {
	return &Flow{
		id:         s.ID,
		userID:     s.UserID,
		draft:      s.Draft,
		step:       s.Step,
		skipped:    s.SessionTypeSkipped,
		preselect:  s.Preselect,
		priceVideo: s.PriceVideo,
		now:        time.Now,
	}
}
