package domain

import (
	"fmt"
	"strings"
)

// DefaultMaxPhotos is the capacity of a collage
const DefaultMaxPhotos = 6

// Selection is an ordered snapshot of the selected photos.
// Snapshots are copies; mutating one never affects the aggregate it came from.
type Selection []Photo

// Len returns the number of selected photos
func (s Selection) Len() int {
	return len(s)
}

// Contains checks whether a photo with the given ID is selected
func (s Selection) Contains(id string) bool {
	for _, p := range s {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the selection
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	copy(out, s)
	return out
}

// IDs returns the photo IDs in selection order
func (s Selection) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}

// CanSave reports whether the collage may be saved.
// Saving requires a non-empty selection with an even number of photos.
func (s Selection) CanSave() bool {
	return len(s) > 0 && len(s)%2 == 0
}

// CanClear reports whether there is anything to clear
func (s Selection) CanClear() bool {
	return len(s) > 0
}

// CanAdd reports whether the picker may be opened
func (s Selection) CanAdd(max int) bool {
	return len(s) < max
}

// Title returns the screen title for the selection
func (s Selection) Title() string {
	switch len(s) {
	case 0:
		return "Collage"
	case 1:
		return "1 photo"
	default:
		return fmt.Sprintf("%d photos", len(s))
	}
}

func (s Selection) String() string {
	return strings.Join(s.IDs(), ", ")
}
