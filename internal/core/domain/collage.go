package domain

import "time"

// Collage describes a composite saved to storage
type Collage struct {
	Filename string    `json:"filename"` // Storage name (e.g. 1718000000000.png)
	Path     string    `json:"path"`     // Path relative to the storage root
	PhotoIDs []string  `json:"photo_ids"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Hash     string    `json:"hash"` // SHA-256 of the PNG bytes
	SavedAt  time.Time `json:"saved_at"`
}

// PhotoUsage counts how many saved collages contain a photo
type PhotoUsage struct {
	PhotoID string
	Count   int
}
