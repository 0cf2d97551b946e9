package wardrobe

// ItemStatus reports whether an outfit reference resolved to a record.
type ItemStatus string

const (
	StatusResolved ItemStatus = "resolved"
	StatusMissing  ItemStatus = "missing"
)

// UnknownItemLabel is the display name used when nothing better is known.
const UnknownItemLabel = "Unknown item"

// OutfitItemViewModel is the display-ready shape of a single outfit reference.
type OutfitItemViewModel struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"displayName"`
	ThumbnailURL *string    `json:"thumbnailUrl"`
	Status       ItemStatus `json:"status"`
	Type         *string    `json:"type"`
	Colour       []string   `json:"colour"`
}

// IsMissing reports whether the reference could not be resolved.
func (vm OutfitItemViewModel) IsMissing() bool {
	return vm.Status == StatusMissing
}

// ItemResolutionResult is the output of a single resolution pass.
type ItemResolutionResult struct {
	ResolvedOutfits map[string][]OutfitItemViewModel `json:"resolvedOutfits"`
	UncachedIDs     []string                         `json:"uncachedIds"`
}

// Counts returns the number of resolved and missing view-models across all outfits.
func (r ItemResolutionResult) Counts() (resolved, missing int) {
	for _, items := range r.ResolvedOutfits {
		for _, vm := range items {
			if vm.IsMissing() {
				missing++
			} else {
				resolved++
			}
		}
	}
	return resolved, missing
}
