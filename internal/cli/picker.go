package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// imageExtensions lists the file extensions offered by the picker, matching
// the formats the sampler can decode.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// pickImages lists the image files in dir and runs the interactive picker.
// It returns the chosen paths, or an empty slice when the user quits.
func pickImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}

	model := newFilePickerModel(files)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}

	result := final.(filePickerModel)
	if !result.confirmed {
		return nil, nil
	}
	picked := result.picked()
	paths := make([]string, len(picked))
	for i, name := range picked {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// =============================================================================
// filePickerModel - Interactive image file selection
// =============================================================================

// filePickerModel is the bubbletea model for multi-selecting image files.
type filePickerModel struct {
	files     []string
	selected  map[int]bool
	cursor    int
	height    int
	offset    int
	confirmed bool
}

func newFilePickerModel(files []string) filePickerModel {
	return filePickerModel{
		files:    files,
		selected: make(map[int]bool),
		height:   15,
	}
}

func (m filePickerModel) Init() tea.Cmd {
	return nil
}

func (m filePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			for i := range m.files {
				m.selected[i] = true
			}
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m filePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Images to Import"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.files) {
		end = len(m.files)
	}

	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, mark, m.files[i])

		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.selected[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d selected]", len(m.picked()), len(m.files))))

	return b.String()
}

// picked returns the toggled file names in listing order.
func (m filePickerModel) picked() []string {
	var out []string
	for i, name := range m.files {
		if m.selected[i] {
			out = append(out, name)
		}
	}
	return out
}
