package watcher

// ReloadPlan describes what a settled change means for the loaded document.
type ReloadPlan struct {
	// Reload is false when the file is gone; the loaded graph is kept
	// until the file reappears.
	Reload       bool
	Path         string
	ChangedFiles []string
}

// PlanReload decides how to react to a debounced change of the document at
// path.
func PlanReload(event ChangeEvent, path string) *ReloadPlan {
	return &ReloadPlan{
		Reload:       event.Type == ChangeTypeWrite,
		Path:         path,
		ChangedFiles: event.Paths,
	}
}
