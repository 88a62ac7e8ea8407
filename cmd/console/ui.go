package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/npc"
	"github.com/jwebster45206/npc-engine/pkg/stats"
)

const PlaceHolderText = "filter by name, id or occupation"

// sheetFunc builds the combat sheet for a record, locally or over the API.
type sheetFunc func(rec *npc.Record) (*actor.Sheet, error)

// ConsoleUI is the BubbleTea model that browses a population.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	population *npc.Population
	sheets     sheetFunc

	visible  []*npc.Record
	selected int

	listViewport   viewport.Model
	detailViewport viewport.Model
	filter         textinput.Model
	filtering      bool

	showSheet bool
	sheet     *actor.Sheet
	sheetErr  error

	status string
	ready  bool
	width  int
	height int

	showQuitModal bool
}

type sheetLoadedMsg struct {
	npcID string
	sheet *actor.Sheet
	err   error
}

type copiedMsg struct {
	npcID string
	err   error
}

var (
	listPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(1)

	detailPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingLeft(1).
				PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	injuredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(pop *npc.Population, sheets sheetFunc) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Prompt = promptStyle.Render("/ ")
	ti.CharLimit = 64

	m := ConsoleUI{
		population:     pop,
		sheets:         sheets,
		visible:        pop.NPCs,
		listViewport:   viewport.New(30, 20),
		detailViewport: viewport.New(60, 20),
		filter:         ti,
	}
	m.detailViewport.MouseWheelEnabled = true
	return m
}

// filterRecords keeps records whose name, id or occupation contains query,
// ignoring case.
func filterRecords(recs []*npc.Record, query string) []*npc.Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return recs
	}
	var out []*npc.Record
	for _, rec := range recs {
		haystack := strings.ToLower(rec.ID + " " + rec.Identity.FullName + " " + rec.Background.Occupation)
		if strings.Contains(haystack, query) {
			out = append(out, rec)
		}
	}
	return out
}

func (m ConsoleUI) current() *npc.Record {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return nil
	}
	return m.visible[m.selected]
}

func writeList(recs []*npc.Record, selected, width int) string {
	var content strings.Builder
	for i, rec := range recs {
		line := fmt.Sprintf("%s %s", rec.ID, rec.Identity.FullName)
		if len(line) > width && width > 1 {
			line = line[:width-1] + "…"
		}
		switch {
		case i == selected:
			content.WriteString(selectedStyle.Render(line))
		case len(rec.Conditions.Afflictions) > 0:
			content.WriteString(injuredStyle.Render(line))
		default:
			content.WriteString(line)
		}
		content.WriteString("\n")
	}
	if len(recs) == 0 {
		content.WriteString(promptStyle.Render("No matches"))
	}
	return content.String()
}

// writeRecord renders the readable profile of rec wrapped to width.
func writeRecord(rec *npc.Record, width int) string {
	if rec == nil {
		return ""
	}
	var content strings.Builder
	field := func(label, value string) {
		content.WriteString(labelStyle.Render(label+": ") + value + "\n")
	}

	content.WriteString(titleStyle.Render(rec.Identity.FullName) + "\n")
	content.WriteString(promptStyle.Render(rec.ID) + "\n\n")

	id := rec.Identity
	field("Occupation", titleCaser.String(rec.Background.Occupation))
	field("Ward", rec.Background.OriginWard)
	if len(rec.Background.Factions) > 0 {
		field("Factions", strings.Join(rec.Background.Factions, ", "))
	}
	field("Species", fmt.Sprintf("%s, %d, %s (%s)", id.Species, id.Age, id.GenderIdentity, id.Pronouns))
	field("Build", fmt.Sprintf("%s, %d cm", id.Build, id.HeightCm))

	looks := fmt.Sprintf("%s hair, %s eyes, %s skin", id.Appearance.Hair, id.Appearance.Eyes, id.Appearance.Skin)
	if len(id.Appearance.DistinguishingMarks) > 0 {
		looks += ", " + strings.Join(id.Appearance.DistinguishingMarks, ", ")
	}
	content.WriteString(wordwrap.String(labelStyle.Render("Looks: ")+looks, width) + "\n\n")

	traits := make([]string, len(rec.Personality.Traits))
	for i, t := range rec.Personality.Traits {
		traits[i] = titleCaser.String(t)
	}
	field("Traits", strings.Join(traits, ", "))
	content.WriteString("\n")

	var attrs []string
	for _, name := range stats.Names {
		attrs = append(attrs, fmt.Sprintf("%s %d", name, rec.Attributes.Get(name)))
	}
	content.WriteString(wordwrap.String(strings.Join(attrs, "  "), width) + "\n")
	d := rec.Derived
	field("HP", fmt.Sprintf("%d/%d", rec.Conditions.Vitals.HP, d.HPMax))
	field("Initiative", fmt.Sprintf("%d  Perception %d  Carry %d", d.Initiative, d.Perception, d.CarryCap))
	content.WriteString("\n")

	if len(rec.Conditions.Afflictions) > 0 {
		content.WriteString(labelStyle.Render("Injuries:") + "\n")
		for _, a := range rec.Conditions.Afflictions {
			line := fmt.Sprintf("• %s (%s, severity %.2f)", titleCaser.String(strings.ReplaceAll(a.ID, "_", " ")), a.Location, a.Severity)
			content.WriteString(injuredStyle.Render(wordwrap.String(line, width)) + "\n")
		}
		content.WriteString("\n")
	}

	if inv := rec.Inventory; inv != nil {
		content.WriteString(labelStyle.Render("Equipment:") + "\n")
		slots := make([]string, 0, len(inv.Slots))
		for slot, item := range inv.Slots {
			if item != nil {
				slots = append(slots, slot)
			}
		}
		sort.Strings(slots)
		for _, slot := range slots {
			content.WriteString(fmt.Sprintf("• %s: %s\n", slot, inv.Slots[slot].ID))
		}
		for _, p := range inv.Pack {
			content.WriteString(fmt.Sprintf("• pack: %s x%d\n", p.ID, p.Qty))
		}
		field("Credits", fmt.Sprintf("%d", inv.Currency.Credits))
		content.WriteString("\n")
	}

	if len(rec.Behavior.Schedule) > 0 {
		content.WriteString(labelStyle.Render("Schedule:") + "\n")
		for _, b := range rec.Behavior.Schedule {
			content.WriteString(fmt.Sprintf("• %s %s-%s @ %s\n", b.Days, b.Start, b.End, b.At))
		}
		content.WriteString("\n")
	}

	rel := rec.Relationships
	if len(rel.Family) > 0 {
		field("Family", strings.Join(rel.Family, ", "))
	}
	if len(rel.Friends) > 0 {
		field("Friends", strings.Join(rel.Friends, ", "))
	}
	field("Tactics", rec.Behavior.CombatTactics)
	if len(rec.Behavior.DialogueStyle) > 0 {
		field("Voice", strings.Join(rec.Behavior.DialogueStyle, ", "))
	}
	return content.String()
}

func writeSheet(sheet *actor.Sheet) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render(sheet.Name+" (combat)") + "\n\n")
	content.WriteString(fmt.Sprintf("HP %d/%d  AC %d\n\n", sheet.HP, sheet.MaxHP, sheet.AC))

	keys := make([]string, 0, len(sheet.Attributes))
	for k := range sheet.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		content.WriteString(fmt.Sprintf("%-11s %d\n", k, sheet.Attributes[k]))
	}

	if len(sheet.CombatModifiers) > 0 {
		content.WriteString("\n" + labelStyle.Render("Modifiers:") + "\n")
		keys = keys[:0]
		for k := range sheet.CombatModifiers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			content.WriteString(fmt.Sprintf("• %s %+d\n", k, sheet.CombatModifiers[k]))
		}
	}
	if sheet.Tactics != "" {
		content.WriteString("\n" + labelStyle.Render("Tactics: ") + sheet.Tactics + "\n")
	}
	return content.String()
}

// refresh rewrites both panes for the current selection and size.
func (m *ConsoleUI) refresh() {
	m.listViewport.SetContent(writeList(m.visible, m.selected, m.listViewport.Width))
	if m.selected >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(m.selected - m.listViewport.Height + 1)
	} else if m.selected < m.listViewport.YOffset {
		m.listViewport.SetYOffset(m.selected)
	}

	rec := m.current()
	switch {
	case rec == nil:
		m.detailViewport.SetContent("")
	case m.showSheet && m.sheetErr != nil:
		m.detailViewport.SetContent(errorStyle.Render("Error: " + m.sheetErr.Error()))
	case m.showSheet && m.sheet != nil && m.sheet.ID == rec.ID:
		m.detailViewport.SetContent(writeSheet(m.sheet))
	case m.showSheet:
		m.detailViewport.SetContent(promptStyle.Render("Loading sheet..."))
	default:
		m.detailViewport.SetContent(writeRecord(rec, m.detailViewport.Width))
	}
}

func (m *ConsoleUI) resize() {
	listWidth := m.width / 3
	m.listViewport.Width = listWidth - 3
	m.listViewport.Height = m.height - 4
	m.detailViewport.Width = m.width - listWidth - 3
	m.detailViewport.Height = m.height - 2
	m.filter.Width = listWidth - 5
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.filtering {
		return m.updateFilter(msg)
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.showQuitModal = true
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				return m.selectionChanged()
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.visible)-1 {
				m.selected++
				return m.selectionChanged()
			}
			return m, nil
		case "tab", "s":
			m.showSheet = !m.showSheet
			m.refresh()
			if m.showSheet {
				return m, m.loadSheet()
			}
			return m, nil
		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		case "c":
			return m, m.copyRecord()
		}

	case sheetLoadedMsg:
		if rec := m.current(); rec != nil && rec.ID == msg.npcID {
			m.sheet, m.sheetErr = msg.sheet, msg.err
			m.refresh()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Copy failed: " + msg.err.Error())
		} else {
			m.status = statusStyle.Render("Copied " + msg.npcID)
		}
		return m, nil
	}

	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) selectionChanged() (tea.Model, tea.Cmd) {
	m.status = ""
	m.sheet, m.sheetErr = nil, nil
	m.detailViewport.GotoTop()
	m.refresh()
	if m.showSheet {
		return m, m.loadSheet()
	}
	return m, nil
}

func (m ConsoleUI) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter, tea.KeyEsc:
			m.filtering = false
			m.filter.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.visible = filterRecords(m.population.NPCs, m.filter.Value())
	m.selected = 0
	m.sheet, m.sheetErr = nil, nil
	m.refresh()
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) loadSheet() tea.Cmd {
	rec := m.current()
	if rec == nil {
		return nil
	}
	sheets := m.sheets
	return func() tea.Msg {
		sheet, err := sheets(rec)
		return sheetLoadedMsg{npcID: rec.ID, sheet: sheet, err: err}
	}
}

func (m ConsoleUI) copyRecord() tea.Cmd {
	rec := m.current()
	if rec == nil {
		return nil
	}
	return func() tea.Msg {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return copiedMsg{npcID: rec.ID, err: err}
		}
		return copiedMsg{npcID: rec.ID, err: clipboard.WriteAll(string(data))}
	}
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep browsing"))

	modal := modalStyle.Width(44).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	header := titleStyle.Render(fmt.Sprintf("%s (%d)", m.population.Seed, len(m.population.NPCs)))
	footer := m.status
	if m.filtering || m.filter.Value() != "" {
		footer = m.filter.View()
	} else if footer == "" {
		footer = promptStyle.Render("↑/↓ select  s sheet  / filter  c copy  q quit")
	}

	listWidth := m.width / 3
	listPanel := listPanelStyle.Width(listWidth).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.listViewport.View(),
			footer,
		),
	)
	detailPanel := detailPanelStyle.Width(m.width - listWidth).Height(m.height).Render(
		m.detailViewport.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
}
