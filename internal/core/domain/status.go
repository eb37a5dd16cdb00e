package domain

// ThumbnailStatus reports whether the thumbnail can be refreshed
type ThumbnailStatus int

const (
	ThumbnailReady ThumbnailStatus = iota
	ThumbnailError
)

func (s ThumbnailStatus) String() string {
	switch s {
	case ThumbnailReady:
		return "READY"
	case ThumbnailError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CollageStatus reports capacity problems of the collage
type CollageStatus int

const (
	CollageOK CollageStatus = iota
	CollageLimitReached
)

func (s CollageStatus) String() string {
	switch s {
	case CollageOK:
		return "OK"
	case CollageLimitReached:
		return "LIMIT_REACHED"
	default:
		return "UNKNOWN"
	}
}
