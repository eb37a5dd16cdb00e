package cmd

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/core/domain"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/internal/eventbus"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

// studioCmd represents the studio command
var studioCmd = &cobra.Command{
	Use:   "studio",
	Short: "Open the collage studio (default command)",
	Long: `Open the full-screen collage studio.

Keyboard Shortcuts:
  Studio:
    a           Open the photo picker
    c           Clear the selection
    s           Save the collage (needs an even number of photos)
    ?           Show help
    q           Quit

  Picker:
    ←↑→↓/hjkl   Move
    Enter/Space Select photo
    Esc         Close the picker`,
	RunE: runStudio,
}

// Event types forwarded to the screen
var studioEvents = []eventbus.EventType{
	domain.EventSelectionChanged,
	domain.EventCollageStatus,
	domain.EventCompositeUpdated,
	domain.EventThumbnailUpdated,
	domain.EventCollageSaved,
	domain.EventCollageSaveFailed,
	domain.EventCatalogReloaded,
}

const (
	toastDuration = 3 * time.Second
	pickerColumns = 3
)

func runStudio(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(getContext())

	bus := eventbus.New(eventbus.WithReplay(domain.EventSelectionChanged))
	selection := services.NewSelectionService(photoCatalog, bus, newSelectionOptions(appConfig))
	composites := services.NewCompositeService(photoCatalog, collageCompositor, bus, appConfig.ThumbnailMaxDimension)
	composites.Start()
	collages := services.NewCollageService(collageRepo, bus)

	m := newStudioModel(ctx, photoCatalog, selection, collages, appConfig.MaxPhotos)
	p := tea.NewProgram(m, tea.WithAltScreen())

	unsubscribe := bus.SubscribeMany(studioEvents, func(e eventbus.DomainEvent) {
		p.Send(busMsg{event: e})
	})

	// Teardown order: cancel pending saves first so they publish nothing
	defer func() {
		cancel()
		unsubscribe()
		selection.Close()
		composites.Stop()
		bus.Close()
		log.Debug().Msg("Studio closed")
	}()

	if appConfig.WatchGallery && directoryCatalog != nil {
		err := directoryCatalog.Watch(ctx, func(n int) {
			bus.Publish(domain.CatalogReloadedEvent{Photos: n})
		})
		if err != nil {
			log.Warn().Err(err).Msg("Gallery watch disabled")
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running studio: %w", err)
	}
	return nil
}

// Studio view modes
type studioMode int

const (
	modeStudio studioMode = iota
	modePicker
	modeHelp
)

type pickerItem struct {
	photo  domain.Photo
	width  int
	height int
}

// pickerSheet is the open picking surface
type pickerSheet struct {
	session *services.PickerSession
	items   []pickerItem
	cursor  int
}

type studioModel struct {
	ctx       context.Context
	catalog   ports.Catalog
	selection *services.SelectionService
	collages  *services.CollageService
	maxPhotos int

	mode        studioMode
	photos      domain.Selection
	composite   image.Image
	composed    domain.Selection // photos drawn in composite
	renderErr   error
	thumbnail   image.Image
	thumbStatus domain.ThumbnailStatus
	hasThumb    bool
	picker      pickerSheet
	saving      bool
	lastSaved   string

	spinner spinner.Model
	help    help.Model
	keys    studioKeyMap
	width   int
	height  int

	toast       string
	toastStyle  lipgloss.Style
	toastExpiry time.Time
}

// Key bindings
type studioKeyMap struct {
	Add    key.Binding
	Clear  key.Binding
	Save   key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Tap    key.Binding
	Close  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Escape key.Binding
}

func (k studioKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Clear, k.Save, k.Help, k.Quit}
}

func (k studioKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Clear, k.Save},
		{k.Up, k.Down, k.Left, k.Right, k.Tap, k.Close},
		{k.Help, k.Quit},
	}
}

var studioKeys = studioKeyMap{
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add photos"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Tap: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter/space", "select photo"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close picker"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
}

func newStudioModel(ctx context.Context, catalog ports.Catalog, selection *services.SelectionService, collages *services.CollageService, maxPhotos int) studioModel {
	if maxPhotos <= 0 {
		maxPhotos = domain.DefaultMaxPhotos
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.StylePrimary

	return studioModel{
		ctx:       ctx,
		catalog:   catalog,
		selection: selection,
		collages:  collages,
		maxPhotos: maxPhotos,
		mode:      modeStudio,
		photos:    domain.Selection{},
		spinner:   sp,
		help:      help.New(),
		keys:      studioKeys,
		width:     80,
		height:    24,
	}
}

// Messages

// busMsg carries a bus event into the UI loop
type busMsg struct {
	event domain.DomainEvent
}

type clearToastMsg struct{}

func (m studioModel) Init() tea.Cmd {
	return nil
}

func (m studioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeHelp:
			return m.updateHelp(msg)
		default:
			return m.updateStudio(msg)
		}

	case busMsg:
		return m.handleEvent(msg.event)

	case spinner.TickMsg:
		if !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clearToastMsg:
		if time.Now().After(m.toastExpiry) {
			m.toast = ""
		}
		return m, nil
	}

	return m, nil
}

func (m studioModel) updateStudio(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add):
		if !m.photos.CanAdd(m.maxPhotos) {
			return m, m.setToast(limitMessage(m.maxPhotos), ui.StyleWarning)
		}
		return m.openPicker()

	case key.Matches(msg, m.keys.Clear):
		if m.photos.CanClear() {
			m.selection.Clear()
		}

	case key.Matches(msg, m.keys.Save):
		if !m.photos.CanSave() || m.saving {
			return m, nil
		}
		if m.composite == nil {
			return m, m.setToast("Nothing to save yet", ui.StyleWarning)
		}
		if !m.composed.CanSave() {
			return m, m.setToast("Preview is still rendering", ui.StyleWarning)
		}
		m.saving = true
		m.collages.SaveAsync(m.ctx, m.composite, m.composed)
		return m, m.spinner.Tick

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m studioModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeStudio
	}
	return m, nil
}

func (m studioModel) openPicker() (tea.Model, tea.Cmd) {
	photos, err := m.catalog.List(m.ctx)
	if err != nil {
		return m, m.setToast("Cannot load gallery: "+err.Error(), ui.StyleError)
	}
	if len(photos) == 0 {
		return m, m.setToast("The gallery is empty", ui.StyleWarning)
	}

	items := make([]pickerItem, 0, len(photos))
	for _, p := range photos {
		w, h, err := m.catalog.Bounds(m.ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("photo", p.ID).Msg("Skipping photo without bounds")
			continue
		}
		items = append(items, pickerItem{photo: p, width: w, height: h})
	}

	m.picker = pickerSheet{
		session: m.selection.OpenPicker(),
		items:   items,
	}
	m.mode = modePicker
	return m, nil
}

func (m studioModel) closePicker() studioModel {
	if m.picker.session != nil {
		m.picker.session.Close()
	}
	m.picker = pickerSheet{}
	m.mode = modeStudio
	return m
}

func (m studioModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.picker.items)

	switch {
	case msg.Type == tea.KeyCtrlC:
		return m.closePicker(), tea.Quit

	case key.Matches(msg, m.keys.Close):
		return m.closePicker(), nil

	case key.Matches(msg, m.keys.Tap):
		if n > 0 {
			m.picker.session.Tap(m.picker.items[m.picker.cursor].photo)
		}

	case key.Matches(msg, m.keys.Left):
		if m.picker.cursor > 0 {
			m.picker.cursor--
		}

	case key.Matches(msg, m.keys.Right):
		if m.picker.cursor < n-1 {
			m.picker.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.picker.cursor-pickerColumns >= 0 {
			m.picker.cursor -= pickerColumns
		}

	case key.Matches(msg, m.keys.Down):
		if m.picker.cursor+pickerColumns < n {
			m.picker.cursor += pickerColumns
		}
	}

	return m, nil
}

func (m studioModel) handleEvent(event domain.DomainEvent) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case domain.SelectionChangedEvent:
		m.photos = e.Photos

	case domain.CompositeUpdatedEvent:
		m.composite = e.Image
		m.composed = e.Photos
		m.renderErr = e.Err

	case domain.ThumbnailUpdatedEvent:
		m.hasThumb = true
		m.thumbStatus = e.Status
		m.thumbnail = e.Image

	case domain.CollageStatusEvent:
		if e.Status == domain.CollageLimitReached {
			return m, m.setToast(limitMessage(m.maxPhotos), ui.StyleWarning)
		}

	case domain.CollageSavedEvent:
		m.saving = false
		m.lastSaved = e.Collage.Path
		path := e.Collage.Path
		if appVault != nil {
			path = appVault.GetCollagePath(e.Collage.Filename)
		}
		toast := m.setToast(ui.IconSave+" "+e.Collage.Filename+" saved", ui.StyleToast)
		return m, tea.Batch(toast, func() tea.Msg {
			copyPath(path)
			return nil
		})

	case domain.CollageSaveFailedEvent:
		m.saving = false
		return m, m.setToast("Error saving file: "+e.Message, ui.StyleToastError)

	case domain.CatalogReloadedEvent:
		return m, m.setToast(fmt.Sprintf("Gallery reloaded (%d photos)", e.Photos), ui.StyleInfo)
	}

	return m, nil
}

func (m *studioModel) setToast(message string, style lipgloss.Style) tea.Cmd {
	m.toast = message
	m.toastStyle = style
	m.toastExpiry = time.Now().Add(toastDuration)
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func limitMessage(limit int) string {
	return fmt.Sprintf("Limit reached: a collage holds at most %d photos", limit)
}

// View

func (m studioModel) View() string {
	if m.mode == modeHelp {
		return m.renderHelp()
	}

	var b strings.Builder

	b.WriteString(ui.StyleTitle.Render(m.photos.Title()))
	b.WriteString("\n\n")
	b.WriteString(m.renderButtons())
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderComposite(), "  ", m.renderSidebar())
	b.WriteString(body)
	b.WriteString("\n")

	if m.mode == modePicker {
		b.WriteString(m.renderPicker())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m studioModel) renderButtons() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		ui.FormatButton("a  add", m.photos.CanAdd(m.maxPhotos)),
		" ",
		ui.FormatButton("c  clear", m.photos.CanClear()),
		" ",
		ui.FormatButton("s  save", m.photos.CanSave() && !m.saving),
	)
}

// compositeSize returns the cell budget for the preview
func (m studioModel) compositeSize() (int, int) {
	cols := m.width*2/3 - 4
	rows := m.height - 14
	if m.mode == modePicker {
		rows -= 8
	}
	return max(cols, 10), max(rows, 4)
}

func (m studioModel) renderComposite() string {
	cols, rows := m.compositeSize()

	var content string
	switch {
	case m.renderErr != nil:
		content = ui.FormatError("Cannot render collage: " + m.renderErr.Error())
	case m.composite == nil:
		content = ui.FormatMuted("No photos yet. Press a to add some.")
	default:
		content = ui.RenderHalfBlocks(m.composite, cols, rows)
	}
	return ui.StylePanel.Render(content)
}

func (m studioModel) renderSidebar() string {
	var b strings.Builder

	b.WriteString(ui.StyleHeader.Render("Thumbnail"))
	b.WriteString("\n")
	switch {
	case !m.hasThumb:
		b.WriteString(ui.FormatMuted("(after picking)"))
	case m.thumbStatus == domain.ThumbnailError:
		b.WriteString(ui.FormatError("unavailable"))
	case m.thumbnail == nil:
		b.WriteString(ui.FormatMuted("(empty)"))
	default:
		b.WriteString(ui.RenderHalfBlocks(m.thumbnail, 24, 8))
	}
	b.WriteString("\n\n")

	b.WriteString(ui.StyleHeader.Render(fmt.Sprintf("Selected %d/%d", len(m.photos), m.maxPhotos)))
	b.WriteString("\n")
	for i, p := range m.photos {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, p.Title))
	}
	if m.lastSaved != "" {
		b.WriteString("\n")
		b.WriteString(ui.StyleSubtle.Render("Last saved: " + m.lastSaved))
	}

	return b.String()
}

func (m studioModel) renderPicker() string {
	cellWidth := max((m.width-8)/pickerColumns, 12)

	var rows []string
	var row []string
	for i, item := range m.picker.items {
		marker := ui.IconEmpty
		if m.photos.Contains(item.photo.ID) {
			marker = ui.IconCheck
		}
		label := marker + " " + item.photo.Title
		if !domain.IsLandscape(item.width, item.height) {
			label += " " + ui.FormatMuted("("+domain.Orientation(item.width, item.height)+")")
		}

		style := lipgloss.NewStyle().Width(cellWidth).MaxWidth(cellWidth)
		if i == m.picker.cursor {
			style = style.Inherit(ui.StyleSelected)
		}
		row = append(row, style.Render(label))

		if len(row) == pickerColumns || i == len(m.picker.items)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	header := ui.StyleHeader.Render("Pick photos") + "  " + ui.FormatMuted("enter select · esc done")
	return ui.StylePanel.Render(header + "\n" + strings.Join(rows, "\n"))
}

func (m studioModel) renderStatusLine() string {
	if m.saving {
		return m.spinner.View() + " Saving collage..."
	}
	if m.toast != "" {
		return m.toastStyle.Render(m.toast)
	}
	return ""
}

func (m studioModel) renderHelp() string {
	var b strings.Builder
	b.WriteString(ui.StyleTitle.Render("Collage Studio Help"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Pick up to %d landscape photos. Saving needs an even number of photos.\n\n", m.maxPhotos))
	m.help.ShowAll = true
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(ui.FormatMuted("Press ? or esc to return"))
	return b.String()
}
