package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var pickSave bool

var pickCmd = &cobra.Command{
	Use:   "pick [photo-id...]",
	Short: "Pick photos with a fuzzy finder",
	Long: `Pick photos one at a time with an interactive fuzzy finder.

Each confirmed entry selects one photo. Press Esc to finish picking.
The same rules as in the studio apply: landscape photos only, no
duplicates, and at most max_photos photos.

Photo IDs given as arguments (see 'collage catalog') are picked in
order without opening the finder.

Use --save to compose and save the collage right away.`,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().BoolVarP(&pickSave, "save", "s", false, "Compose and save the collage after picking")
}

// pickEntry is a catalog photo shown in the finder
type pickEntry struct {
	photo  domain.Photo
	width  int
	height int
}

// pickResult is the outcome of one picking session
type pickResult struct {
	photos    domain.Selection
	taps      int
	accepted  int
	limitHits int // picks made while the collage was already full
}

// photoFinder asks for one entry given the settled selection
type photoFinder func(entries []pickEntry, photos domain.Selection, opts services.SelectionOptions) (int, error)

func runPick(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	bus := eventbus.New(eventbus.WithReplay(domain.EventSelectionChanged))
	defer bus.Close()

	selection := services.NewSelectionService(photoCatalog, bus, newSelectionOptions(appConfig))
	defer selection.Close()

	var result pickResult
	if len(args) > 0 {
		r, err := pickByID(ctx, photoCatalog, selection, args)
		if err != nil {
			return err
		}
		result = r
	} else {
		entries, err := loadPickEntries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(ui.FormatWarning("The gallery is empty"))
			return nil
		}
		r, err := pickInteractive(ctx, selection, entries, findPhoto)
		if err != nil {
			return err
		}
		result = r
	}

	photos := result.photos
	maxPhotos := selection.Options().MaxPhotos

	fmt.Println(ui.FormatTitle(photos.Title()))
	fmt.Println()
	if len(photos) == 0 {
		fmt.Println(ui.FormatMuted("No photos selected"))
	}
	titles := make([]string, 0, len(photos))
	for _, p := range photos {
		titles = append(titles, p.Title)
	}
	fmt.Print(ui.RenderSimpleList(titles))
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d picks, %d accepted", result.taps, result.accepted)))
	if result.limitHits > 0 || !photos.CanAdd(maxPhotos) {
		fmt.Println(ui.FormatWarning(limitMessage(maxPhotos)))
	}
	if result.limitHits > 0 {
		fmt.Println(ui.FormatMuted(fmt.Sprintf("%d picks over the limit were ignored", result.limitHits)))
	}

	if !pickSave {
		return nil
	}

	if !photos.CanSave() {
		fmt.Println(ui.FormatWarning("A collage needs an even number of photos, nothing saved"))
		return nil
	}

	composites := services.NewCompositeService(photoCatalog, collageCompositor, bus, appConfig.ThumbnailMaxDimension)
	img, err := composites.Render(ctx, photos)
	if err != nil {
		return err
	}

	collages := services.NewCollageService(collageRepo, bus)
	saved, err := collages.Save(ctx, img, photos)
	if err != nil {
		fmt.Println(ui.FormatError("Error saving file"))
		return err
	}

	path := appVault.GetCollagePath(saved.Filename)
	fmt.Println(ui.FormatSuccess(saved.Filename + " saved"))
	fmt.Println(ui.FormatMuted(path))
	if copyPath(path) {
		fmt.Println(ui.FormatMuted("(path copied to clipboard)"))
	}

	return nil
}

// pickInteractive runs finder rounds until the user aborts or the
// collage is full. Every pick is settled before the next round.
func pickInteractive(ctx context.Context, selection *services.SelectionService, entries []pickEntry, find photoFinder) (pickResult, error) {
	session := selection.OpenPicker()
	opts := selection.Options()

	for {
		photos := selection.Snapshot()
		if !photos.CanAdd(opts.MaxPhotos) {
			break
		}

		idx, err := find(entries, photos, opts)
		if err != nil {
			if errors.Is(err, fuzzyfinder.ErrAbort) {
				break
			}
			session.Close()
			return pickResult{}, fmt.Errorf("picker failed: %w", err)
		}

		session.Tap(entries[idx].photo)
		if err := session.Settle(ctx); err != nil {
			session.Close()
			return pickResult{}, err
		}
	}

	return finishPick(selection, session, 0), nil
}

// pickByID picks the given catalog IDs in order
func pickByID(ctx context.Context, catalog ports.Catalog, selection *services.SelectionService, ids []string) (pickResult, error) {
	session := selection.OpenPicker()
	opts := selection.Options()
	limitHits := 0

	for _, id := range ids {
		photo, err := catalog.Get(ctx, id)
		if err != nil {
			session.Close()
			return pickResult{}, fmt.Errorf("unknown photo %q: %w", id, err)
		}

		if !selection.Snapshot().CanAdd(opts.MaxPhotos) {
			limitHits++
		}
		session.Tap(photo)
		if err := session.Settle(ctx); err != nil {
			session.Close()
			return pickResult{}, err
		}
	}

	return finishPick(selection, session, limitHits), nil
}

func finishPick(selection *services.SelectionService, session *services.PickerSession, limitHits int) pickResult {
	session.Close()
	taps, accepted := session.Stats()
	return pickResult{
		photos:    selection.Snapshot(),
		taps:      taps,
		accepted:  accepted,
		limitHits: limitHits,
	}
}

func loadPickEntries() ([]pickEntry, error) {
	ctx := getContext()

	photos, err := photoCatalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}

	entries := make([]pickEntry, 0, len(photos))
	for _, p := range photos {
		w, h, err := photoCatalog.Bounds(ctx, p)
		if err != nil {
			continue
		}
		entries = append(entries, pickEntry{photo: p, width: w, height: h})
	}
	return entries, nil
}

// findPhoto runs one fuzzy finder round
func findPhoto(entries []pickEntry, photos domain.Selection, opts services.SelectionOptions) (int, error) {
	return fuzzyfinder.Find(
		entries,
		func(i int) string {
			e := entries[i]
			return fmt.Sprintf("%s  %s  %s", e.photo.Title, e.photo.ID, domain.Orientation(e.width, e.height))
		},
		fuzzyfinder.WithPromptString(pickPrompt(photos, opts.MaxPhotos)),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return pickPreview(entries[i], photos, opts.LandscapeOnly)
		}),
	)
}

func pickPrompt(photos domain.Selection, maxPhotos int) string {
	return fmt.Sprintf("%s (%d/%d) > ", photos.Title(), len(photos), maxPhotos)
}

func pickPreview(e pickEntry, photos domain.Selection, landscapeOnly bool) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("Photo: %s\n", ui.StyleBold.Render(e.photo.Title)))
	s.WriteString(fmt.Sprintf("ID:    %s\n", e.photo.ID))
	s.WriteString(fmt.Sprintf("Size:  %dx%d (%s)\n", e.width, e.height, domain.Orientation(e.width, e.height)))
	s.WriteString("\n")

	switch {
	case photos.Contains(e.photo.ID):
		s.WriteString(ui.FormatMuted("Already selected") + "\n")
	case landscapeOnly && !domain.IsLandscape(e.width, e.height):
		s.WriteString(ui.FormatMuted("Only landscape photos can be added") + "\n")
	}

	s.WriteString("\n")
	s.WriteString(ui.StyleHeader.Render("Selected") + "\n")
	if len(photos) == 0 {
		s.WriteString(ui.FormatMuted("(none yet)"))
	}
	for i, p := range photos {
		s.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Title))
	}
	return s.String()
}
