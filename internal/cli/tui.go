package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/contactsheet/pkg/errors"
	"github.com/matzehuels/contactsheet/pkg/export"
	"github.com/matzehuels/contactsheet/pkg/grid"
	"github.com/matzehuels/contactsheet/pkg/page"
	"github.com/matzehuels/contactsheet/pkg/raster"
	"github.com/matzehuels/contactsheet/pkg/sheet"
)

// scaleStep is the scale change per +/- key press.
const scaleStep = 0.1

// Preview bounds in terminal cells. Rows count double because a cell is
// about twice as tall as it is wide.
const (
	previewMaxCols = 120
	previewMaxRows = 36
)

var (
	cellStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	cellCursorStyle = cellStyle.BorderForeground(colorCyan)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	inputStyle      = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

// =============================================================================
// Messages
// =============================================================================

// sourcesLoadedMsg carries images read by the add prompt.
type sourcesLoadedMsg struct {
	sources []sheet.Source
	infos   []raster.Info
	err     error
}

// exportDoneMsg is sent when a background export finishes.
type exportDoneMsg struct {
	job *export.Job
	res *export.Result
	err error
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// =============================================================================
// EditModel - Interactive sheet editor
// =============================================================================

// EditModel is the bubbletea model for the interactive contact sheet. It
// owns the sheet and is its only writer; exports run on frozen snapshots.
type EditModel struct {
	ctx      context.Context
	logger   *log.Logger
	sheet    *sheet.Sheet
	exporter *export.Exporter
	opts     export.Options

	infos  map[uuid.UUID]raster.Info
	cursor int

	adding bool
	input  string

	job        *export.Job
	status     string
	statusKind statusKind
	quitting   bool
}

// NewEditModel creates an editor for s. opts is used for every export.
func NewEditModel(ctx context.Context, logger *log.Logger, s *sheet.Sheet, opts export.Options) EditModel {
	m := EditModel{
		ctx:      ctx,
		logger:   logger,
		sheet:    s,
		exporter: export.NewExporter(logger),
		opts:     opts,
		infos:    make(map[uuid.UUID]raster.Info),
	}
	for _, slot := range s.Slots() {
		if info, err := raster.Probe(slot.Source.Data); err == nil {
			m.infos[slot.Source.ID] = info
		}
	}
	m.setStatus(statusInfo, "a add · r rotate · +/- scale · x remove · o orientation · e export · q quit")
	return m
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdd(msg)
		}
		return m.updateNormal(msg)

	case sourcesLoadedMsg:
		if msg.err != nil {
			m.setStatus(statusError, errors.UserMessage(msg.err))
			return m, nil
		}
		if err := m.sheet.Add(msg.sources...); err != nil {
			m.setStatus(statusError, errors.UserMessage(err))
			return m, nil
		}
		added := m.sheet.Slots()[m.sheet.Len()-len(msg.sources):]
		for i, slot := range added {
			m.infos[slot.Source.ID] = msg.infos[i]
		}
		m.cursor = m.sheet.Len() - 1
		m.setStatus(statusSuccess, fmt.Sprintf("Added %d image(s), %d/%d slots used", len(msg.sources), m.sheet.Len(), sheet.Capacity))

	case exportDoneMsg:
		if msg.job == m.job {
			m.job = nil
		}
		if msg.err != nil {
			m.setStatus(statusError, "Export failed: "+errors.UserMessage(msg.err))
		} else {
			m.setStatus(statusSuccess, "Saved "+msg.res.Path)
		}
	}
	return m, nil
}

func (m EditModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if m.job != nil {
			m.job.Cancel()
		}
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		if m.cursor%grid.Cols > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%grid.Cols < grid.Cols-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor >= grid.Cols {
			m.cursor -= grid.Cols
		}
	case "down", "j":
		if m.cursor+grid.Cols < grid.Size {
			m.cursor += grid.Cols
		}
	case "r":
		m.apply(m.sheet.Rotate(m.cursor), "Rotated")
	case "+", "=":
		m.apply(m.sheet.AdjustScale(m.cursor, scaleStep), "Scaled up")
	case "-", "_":
		m.apply(m.sheet.AdjustScale(m.cursor, -scaleStep), "Scaled down")
	case "x", "delete", "backspace":
		m.apply(m.sheet.Remove(m.cursor), "Removed")
	case "o":
		o := m.sheet.ToggleOrientation()
		m.setStatus(statusInfo, "Orientation: "+o.String())
	case "a":
		if m.sheet.Full() {
			m.setStatus(statusError, fmt.Sprintf("Maximum %d images allowed", sheet.Capacity))
			return m, nil
		}
		m.adding = true
		m.input = ""
	case "e":
		return m.startExport()
	}
	return m, nil
}

func (m EditModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.adding = false
		m.input = ""
		return m, nil
	case tea.KeyEnter:
		m.adding = false
		paths := strings.Fields(m.input)
		m.input = ""
		if len(paths) == 0 {
			return m, nil
		}
		m.setStatus(statusInfo, "Loading…")
		return m, loadSourcesCmd(m.ctx, m.logger, paths)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// apply reports the outcome of a slot mutation on the status line.
func (m *EditModel) apply(err error, done string) {
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidIndex) {
			m.setStatus(statusError, "No image in this cell")
			return
		}
		m.setStatus(statusError, errors.UserMessage(err))
		return
	}
	if m.cursor >= m.sheet.Len() && m.sheet.Len() > 0 {
		m.cursor = m.sheet.Len() - 1
	}
	m.setStatus(statusInfo, done)
}

func (m EditModel) startExport() (tea.Model, tea.Cmd) {
	job, err := m.exporter.Start(m.ctx, m.sheet.Snapshot(), m.opts)
	if err != nil {
		m.setStatus(statusError, errors.UserMessage(err))
		return m, nil
	}
	m.job = job
	m.setStatus(statusInfo, fmt.Sprintf("Exporting %s…", job.Path))
	return m, waitExportCmd(job)
}

func (m *EditModel) setStatus(kind statusKind, msg string) {
	m.statusKind = kind
	m.status = msg
}

// waitExportCmd blocks until job finishes and reports the outcome.
func waitExportCmd(job *export.Job) tea.Cmd {
	return func() tea.Msg {
		<-job.Done()
		res, err := job.Result()
		return exportDoneMsg{job: job, res: res, err: err}
	}
}

// loadSourcesCmd reads and decodes images off the update loop. Every image
// is fully decoded once so broken files are refused before they reach the
// sheet.
func loadSourcesCmd(ctx context.Context, logger *log.Logger, paths []string) tea.Cmd {
	return func() tea.Msg {
		sources, err := loadSources(ctx, logger, paths)
		if err != nil {
			return sourcesLoadedMsg{err: err}
		}
		infos := make([]raster.Info, len(sources))
		for i, src := range sources {
			if _, err := raster.Thumbnail(src.Data, 64, 64); err != nil {
				return sourcesLoadedMsg{err: errors.Wrap(errors.ErrCodeInvalidInput, err, "%s could not be decoded", src.Name)}
			}
			infos[i], _ = raster.Probe(src.Data)
		}
		return sourcesLoadedMsg{sources: sources, infos: infos}
	}
}

// =============================================================================
// View
// =============================================================================

func (m EditModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	spec := page.MustCompute(m.sheet.Orientation())
	b.WriteString(StyleTitle.Render("Contact Sheet"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%s · %d×%d px · %d/%d images",
		spec.Orientation, spec.WidthPx, spec.HeightPx, m.sheet.Len(), sheet.Capacity)))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid(spec))
	b.WriteString("\n")

	if m.adding {
		b.WriteString(StyleHighlight.Render("Add image(s): "))
		b.WriteString(inputStyle.Render(m.input + "█"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("paths or glob patterns, separated by spaces · enter add · esc cancel"))
	} else {
		b.WriteString(m.renderStatus())
	}
	b.WriteString("\n")
	return b.String()
}

// cellSize returns the inner size of one preview cell. It derives from the
// page aspect ratio so the preview has the exported page's shape.
func cellSize(spec page.Spec) (w, h int) {
	pw, ph := spec.PreviewSize(previewMaxCols, previewMaxRows*2)
	w = max(pw/grid.Cols-4, 8) // border and padding
	h = max(ph/2/grid.Rows-2, 3)
	return w, h
}

func (m EditModel) renderGrid(spec page.Spec) string {
	w, h := cellSize(spec)
	rows := make([]string, 0, grid.Rows)
	for r := 0; r < grid.Rows; r++ {
		cells := make([]string, 0, grid.Cols)
		for c := 0; c < grid.Cols; c++ {
			i := r*grid.Cols + c
			style := cellStyle
			if i == m.cursor {
				style = cellCursorStyle
			}
			cells = append(cells, style.Width(w+2).Height(h).Render(m.cellText(i, w)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m EditModel) cellText(i, w int) string {
	slot, ok := m.sheet.Slot(i)
	if !ok {
		return listDimStyle.Render(fmt.Sprintf("%d\nempty", i+1))
	}
	lines := []string{
		StyleNumber.Render(fmt.Sprintf("%d", i+1)),
		StyleValue.Render(truncate(slot.Source.Name, w)),
		listDimStyle.Render(fmt.Sprintf("%d° · %.1f×", slot.Rotation, slot.Scale)),
	}
	if info, ok := m.infos[slot.Source.ID]; ok {
		lines = append(lines, listDimStyle.Render(truncate(fmt.Sprintf("%s %d×%d", info.Format, info.Width, info.Height), w)))
	}
	return strings.Join(lines, "\n")
}

func (m EditModel) renderStatus() string {
	switch m.statusKind {
	case statusSuccess:
		return styleIconSuccess.Render(iconSuccess) + " " + m.status
	case statusError:
		return styleIconError.Render(iconError) + " " + StyleError.Render(m.status)
	default:
		return listDimStyle.Render(m.status)
	}
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	ext := filepath.Ext(s)
	if len([]rune(ext)) < n-1 {
		keep := n - 1 - len([]rune(ext))
		return string(r[:keep]) + "…" + ext
	}
	return string(r[:n-1]) + "…"
}
