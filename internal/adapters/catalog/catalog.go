package catalog

import (
	"errors"
	"time"
)

// ErrPhotoNotFound is returned for IDs the catalog does not know
var ErrPhotoNotFound = errors.New("photo not found")

// Exif holds the camera metadata shown in listings
type Exif struct {
	Make  string
	Model string
	Taken time.Time
}

// Camera returns "Make Model" without duplicated vendor names
func (e Exif) Camera() string {
	switch {
	case e.Make == "":
		return e.Model
	case e.Model == "":
		return e.Make
	case len(e.Model) >= len(e.Make) && e.Model[:len(e.Make)] == e.Make:
		return e.Model
	default:
		return e.Make + " " + e.Model
	}
}
