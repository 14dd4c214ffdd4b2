package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	mainMenu     list.Model
	predictTable table.Model
	dateInput    textinput.Model
	spinner      spinner.Model
	client       *ApiClient
	modelInfo    *ModelInfo
	decisions    []Decision
	loading      bool
	currentView  string
	error        string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Predict Quantities", desc: "Preparation quantities for every menu item on a date"},
		item{title: "Model Info", desc: "Loaded model artifact metadata"},
		item{title: "Recent Decisions", desc: "Latest entries from the decision audit log"},
		item{title: "Exit", desc: "Exit the application"},
	}

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Canteen Optimizer CLI"

	columns := []table.Column{
		{Title: "Item", Width: 16},
		{Title: "Quantity", Width: 10},
		{Title: "Estimate", Width: 10},
		{Title: "Adjustment", Width: 12},
		{Title: "Rules", Width: 30},
	}
	predictTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	ti := textinput.New()
	ti.Placeholder = time.Now().Format("2006-01-02")
	ti.CharLimit = 10
	ti.Width = 12

	return Model{
		mainMenu:     mainMenu,
		predictTable: predictTable,
		dateInput:    ti,
		spinner:      s,
		client:       NewApiClient(),
		currentView:  "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.currentView == "main" || !m.dateInput.Focused() {
				return m, tea.Quit
			}
		case "enter":
			if m.currentView == "main" {
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Predict Quantities":
						m.currentView = "predict_date"
						m.error = ""
						m.dateInput.SetValue("")
						m.dateInput.Focus()
						return m, nil
					case "Model Info":
						m.currentView = "model_info"
						m.loading = true
						return m, fetchModelInfo(m.client)
					case "Recent Decisions":
						m.currentView = "decisions"
						m.loading = true
						return m, fetchDecisions(m.client)
					}
				}
			} else if m.currentView == "predict_date" {
				date := m.dateInput.Value()
				if date == "" {
					date = m.dateInput.Placeholder
				}
				if _, err := time.Parse("2006-01-02", date); err != nil {
					m.error = "Date must be YYYY-MM-DD"
					return m, nil
				}
				m.currentView = "predictions"
				m.loading = true
				m.error = ""
				return m, fetchPredictions(m.client, date)
			}
		case "esc":
			if m.currentView != "main" {
				m.currentView = "main"
				m.error = ""
			}
		}
	case predictionsMsg:
		m.loading = false
		m.predictTable.SetRows(predictionRows(msg.predictions))
		return m, nil
	case modelInfoMsg:
		m.loading = false
		m.modelInfo = msg.info
		return m, nil
	case decisionsMsg:
		m.loading = false
		m.decisions = msg.decisions
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "predict_date":
		m.dateInput, cmd = m.dateInput.Update(msg)
	case "predictions":
		m.predictTable, cmd = m.predictTable.Update(msg)
	}
	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "predict_date":
		help := "\nEnter a date (YYYY-MM-DD), 'enter' to predict, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Predict Quantities") + "\n\n" + m.dateInput.View() + help)
	case "predictions":
		if m.loading {
			return docStyle.Render(m.spinner.View() + " Running predictions...")
		}
		if m.error != "" {
			return docStyle.Render(errorStyle.Render(m.error) + "\nPress 'esc' to go back")
		}
		return docStyle.Render(titleStyle.Render("Preparation Quantities") + "\n\n" +
			m.predictTable.View() + "\nPress 'esc' to go back")
	case "model_info":
		if m.loading {
			return docStyle.Render(m.spinner.View() + " Loading model info...")
		}
		if m.error != "" {
			return docStyle.Render(errorStyle.Render(m.error) + "\nPress 'esc' to go back")
		}
		return docStyle.Render(modelInfoView(m.modelInfo))
	case "decisions":
		if m.loading {
			return docStyle.Render(m.spinner.View() + " Loading decisions...")
		}
		if m.error != "" {
			return docStyle.Render(errorStyle.Render(m.error) + "\nPress 'esc' to go back")
		}
		return docStyle.Render(decisionsView(m.decisions))
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type predictionsMsg struct {
	predictions []Prediction
}

type modelInfoMsg struct {
	info *ModelInfo
}

type decisionsMsg struct {
	decisions []Decision
}

type errorMsg struct {
	err string
}

// fetchPredictions runs one prediction per catalogue item
func fetchPredictions(client *ApiClient, date string) tea.Cmd {
	return func() tea.Msg {
		items, err := client.GetMenuItems()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching menu items: %v", err)}
		}

		predictions := make([]Prediction, 0, len(items))
		for _, it := range items {
			pred, err := client.Predict(date, it.ID)
			if err != nil {
				return errorMsg{err: fmt.Sprintf("Error predicting %s: %v", it.ID, err)}
			}
			predictions = append(predictions, *pred)
		}
		return predictionsMsg{predictions: predictions}
	}
}

// fetchModelInfo retrieves the model metadata
func fetchModelInfo(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		info, err := client.GetModelInfo()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching model info: %v", err)}
		}
		return modelInfoMsg{info: info}
	}
}

// fetchDecisions retrieves the latest audit log entries
func fetchDecisions(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		decisions, err := client.GetRecentDecisions()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching decisions: %v", err)}
		}
		return decisionsMsg{decisions: decisions}
	}
}

// predictionRows converts API predictions to table rows
func predictionRows(predictions []Prediction) []table.Row {
	rows := make([]table.Row, len(predictions))
	for i, p := range predictions {
		rules := ""
		for j, r := range p.RulesFired {
			if j > 0 {
				rules += ", "
			}
			rules += r
		}
		rows[i] = table.Row{
			p.ItemID,
			strconv.Itoa(p.PredictedQuantity),
			fmt.Sprintf("%.1f", p.RawEstimate),
			fmt.Sprintf("%+.0f", p.PolicyAdjustment),
			rules,
		}
	}
	return rows
}

// modelInfoView renders the model metadata
func modelInfoView(info *ModelInfo) string {
	if info == nil {
		return "No model info available"
	}
	view := titleStyle.Render("Model Info") + "\n\n"
	view += fmt.Sprintf("Schema version: %s\n", info.SchemaVersion)
	view += fmt.Sprintf("Features: %d\n", info.Features)
	view += fmt.Sprintf("Action levels: %v\n", info.ActionLevels)
	view += fmt.Sprintf("Q-table states: %d\n", info.QTableStates)
	view += fmt.Sprintf("Final epsilon: %.3f\n", info.FinalEpsilon)
	view += fmt.Sprintf("Episodes: %d\n", info.Episodes)
	view += fmt.Sprintf("Trained at: %s\n", info.TrainedAt.Format(time.RFC1123))
	view += "\nPress 'esc' to go back"
	return view
}

// decisionsView renders the audit log entries
func decisionsView(decisions []Decision) string {
	view := titleStyle.Render("Recent Decisions") + "\n\n"
	if len(decisions) == 0 {
		view += "No decisions recorded yet\n"
	}
	for _, d := range decisions {
		view += fmt.Sprintf("%s  %s  qty %d  (est %.1f)\n",
			d.Date.Format("2006-01-02"), d.ItemID, d.PredictedQuantity, d.RawEstimate)
		if d.RulesFired != "" {
			view += "  " + infoStyle.Render(d.RulesFired) + "\n"
		}
	}
	view += "\nPress 'esc' to go back"
	return view
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
