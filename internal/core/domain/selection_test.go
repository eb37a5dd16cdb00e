package domain

import "testing"

func photos(ids ...string) Selection {
	s := make(Selection, 0, len(ids))
	for _, id := range ids {
		s = append(s, Photo{ID: id, Title: id})
	}
	return s
}

func TestSelection_CanSave(t *testing.T) {
	tests := []struct {
		name     string
		sel      Selection
		expected bool
	}{
		{"empty", photos(), false},
		{"one", photos("a"), false},
		{"two", photos("a", "b"), true},
		{"three", photos("a", "b", "c"), false},
		{"six", photos("a", "b", "c", "d", "e", "f"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.CanSave(); got != tt.expected {
				t.Errorf("CanSave() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSelection_Buttons(t *testing.T) {
	empty := photos()
	if empty.CanClear() {
		t.Error("expected clear to be disabled for empty selection")
	}
	if !empty.CanAdd(DefaultMaxPhotos) {
		t.Error("expected add to be enabled for empty selection")
	}

	full := photos("a", "b", "c", "d", "e", "f")
	if !full.CanClear() {
		t.Error("expected clear to be enabled for full selection")
	}
	if full.CanAdd(DefaultMaxPhotos) {
		t.Error("expected add to be disabled for full selection")
	}
}

func TestSelection_Title(t *testing.T) {
	tests := []struct {
		sel      Selection
		expected string
	}{
		{photos(), "Collage"},
		{photos("a"), "1 photo"},
		{photos("a", "b", "c"), "3 photos"},
	}

	for _, tt := range tests {
		if got := tt.sel.Title(); got != tt.expected {
			t.Errorf("Title() = %q, want %q", got, tt.expected)
		}
	}
}

func TestSelection_CloneIsIndependent(t *testing.T) {
	original := photos("a", "b")
	clone := original.Clone()
	clone[0] = Photo{ID: "z"}

	if original[0].ID != "a" {
		t.Errorf("expected original to be untouched, got %q", original[0].ID)
	}
	if !original.Contains("b") || original.Contains("z") {
		t.Errorf("unexpected contents: %v", original.IDs())
	}
}

func TestPhoto_EqualByID(t *testing.T) {
	a := Photo{ID: "sunset", Title: "Sunset"}
	b := Photo{ID: "sunset", Title: "Another title", Source: "/tmp/x.png"}
	if !a.Equal(b) {
		t.Error("photos with the same ID should be equal")
	}
	if a.Equal(Photo{ID: "lake"}) {
		t.Error("photos with different IDs should not be equal")
	}
}

func TestOrientation(t *testing.T) {
	tests := []struct {
		w, h      int
		landscape bool
		label     string
	}{
		{400, 300, true, "landscape"},
		{300, 400, false, "portrait"},
		{300, 300, false, "square"},
	}

	for _, tt := range tests {
		if got := IsLandscape(tt.w, tt.h); got != tt.landscape {
			t.Errorf("IsLandscape(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.landscape)
		}
		if got := Orientation(tt.w, tt.h); got != tt.label {
			t.Errorf("Orientation(%d, %d) = %q, want %q", tt.w, tt.h, got, tt.label)
		}
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Beach Day.JPG", "beach-day-jpg"},
		{"  Lake   Como  ", "lake-como"},
		{"IMG_0042.png", "img-0042-png"},
	}

	for _, tt := range tests {
		if got := GenerateSlug(tt.name); got != tt.expected {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}
