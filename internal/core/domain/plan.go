package domain

// TrainingPlan is a plan listed by the training API. It is displayed
// as-is; the client attaches no behavior to it.
type TrainingPlan struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Level       string   `json:"level,omitempty" yaml:"level,omitempty"`
	Weeks       int      `json:"duration_weeks,omitempty" yaml:"duration_weeks,omitempty"`
	Tier        PlanTier `json:"tier,omitempty" yaml:"tier,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" table:"wide"`
}
