package domain

import "image"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSelectionChanged  EventType = "SelectionChanged"
	EventThumbnailStatus   EventType = "ThumbnailStatus"
	EventCollageStatus     EventType = "CollageStatus"
	EventPickerOpened      EventType = "PickerOpened"
	EventPickerClosed      EventType = "PickerClosed"
	EventCompositeUpdated  EventType = "CompositeUpdated"
	EventThumbnailUpdated  EventType = "ThumbnailUpdated"
	EventCollageSaved      EventType = "CollageSaved"
	EventCollageSaveFailed EventType = "CollageSaveFailed"
	EventCatalogReloaded   EventType = "CatalogReloaded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SelectionChangedEvent carries the full selection after every change
type SelectionChangedEvent struct {
	Photos Selection
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// ThumbnailStatusEvent is emitted when a picker session completes
type ThumbnailStatusEvent struct {
	SessionID string
	Status    ThumbnailStatus
}

func (e ThumbnailStatusEvent) Type() EventType { return EventThumbnailStatus }

// CollageStatusEvent is emitted for every tap observed while the collage is full
type CollageStatusEvent struct {
	SessionID string
	Status    CollageStatus
}

func (e CollageStatusEvent) Type() EventType { return EventCollageStatus }

// PickerOpenedEvent is emitted when a picker session is attached
type PickerOpenedEvent struct {
	SessionID string
}

func (e PickerOpenedEvent) Type() EventType { return EventPickerOpened }

// PickerClosedEvent is emitted when a picker session completes
type PickerClosedEvent struct {
	SessionID string
	Taps      int
	Accepted  int
}

func (e PickerClosedEvent) Type() EventType { return EventPickerClosed }

// CompositeUpdatedEvent carries the composite for the current selection.
// Image is nil when the selection is empty or compositing failed.
type CompositeUpdatedEvent struct {
	Photos Selection
	Image  image.Image
	Err    error
}

func (e CompositeUpdatedEvent) Type() EventType { return EventCompositeUpdated }

// ThumbnailUpdatedEvent carries the refreshed thumbnail
type ThumbnailUpdatedEvent struct {
	Status ThumbnailStatus
	Image  image.Image
}

func (e ThumbnailUpdatedEvent) Type() EventType { return EventThumbnailUpdated }

// CollageSavedEvent is emitted when a composite was written to storage
type CollageSavedEvent struct {
	Collage Collage
}

func (e CollageSavedEvent) Type() EventType { return EventCollageSaved }

// CollageSaveFailedEvent is emitted when writing a composite failed
type CollageSaveFailedEvent struct {
	Message string
	Err     error
}

func (e CollageSaveFailedEvent) Type() EventType { return EventCollageSaveFailed }

// CatalogReloadedEvent is emitted when the gallery directory changed on disk
type CatalogReloadedEvent struct {
	Photos int
}

func (e CatalogReloadedEvent) Type() EventType { return EventCatalogReloaded }
