package wardrobe

import "time"

// OutfitSuggestion groups item references into a suggested outfit.
// ItemIDs is kept as the raw decoded JSON value: it comes from user-influenced
// data and is not guaranteed to be an array of strings.
type OutfitSuggestion struct {
	ID       string    `json:"id"`
	OwnerID  string    `json:"ownerId,omitempty"`
	Title    string    `json:"title,omitempty"`
	Occasion *string   `json:"occasion,omitempty"`
	ItemIDs  any       `json:"itemIds"`
	Created  time.Time `json:"created"`
}
