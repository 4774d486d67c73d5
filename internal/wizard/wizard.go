// Package wizard implements the interactive init flow: it collects a
// metastore environment and a default conversion target, then writes
// orcify.toml and the matching .env file.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// New creates a new wizard model
func New() WizardModel {
	return WizardModel{
		state:  StateWelcome,
		errors: make(map[string]string),
		inputs: []textinput.Model{},
	}
}

// Run starts the wizard and returns the files it created.
func Run() (*InitResult, error) {
	program := tea.NewProgram(New())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	model, ok := final.(WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected wizard model type")
	}
	if model.err != nil {
		return nil, model.err
	}
	return model.result, nil
}

// Init initializes the wizard (Bubble Tea Init)
func (m WizardModel) Init() tea.Cmd {
	return nil
}

// Update handles state transitions (Bubble Tea Update)
func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			return m.handleUp()

		case "down":
			return m.handleDown()

		case "tab":
			return m.handleTab()

		default:
			return m.handleTextInput(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case connectionTestResultMsg:
		m.testingConnection = false
		if msg.err != nil {
			m.connectionError = msg.err
			m.connectionTestResult = "failed"
		} else {
			m.connectionTestResult = "success"
			m.connectionError = nil
		}
		return m, nil

	case fileCreationResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateError
			return m, nil
		}
		m.result = msg.result
		m.state = StateDone
		return m, nil
	}

	return m, nil
}

// View renders the wizard UI (Bubble Tea View)
func (m WizardModel) View() string {
	switch m.state {
	case StateWelcome:
		return m.renderWelcome()
	case StateMetastoreType:
		return m.renderMetastoreType()
	case StateConnectionDetails:
		return m.renderConnectionDetails()
	case StateTestConnection:
		return m.renderTestConnection()
	case StateConversionDetails:
		return m.renderConversionDetails()
	case StateSummary:
		return m.renderSummary()
	case StateCreating:
		return m.renderCreating()
	case StateDone:
		return m.renderDone()
	case StateError:
		return m.renderError()
	default:
		return "Unknown state"
	}
}

// State transition handlers

func (m WizardModel) handleEnter() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateWelcome:
		m.state = StateMetastoreType
		return m, nil

	case StateMetastoreType:
		m.env.MetastoreType = MetastoreTypes[m.metastoreTypeIndex].ID
		m.state = StateConnectionDetails
		m.initializeConnectionInputs()
		return m, nil

	case StateConnectionDetails:
		if err := m.collectConnectionValues(); err != nil {
			return m, nil
		}
		m.state = StateTestConnection
		m.testingConnection = true
		return m, m.testConnection()

	case StateTestConnection:
		switch m.connectionTestResult {
		case "success":
			m.state = StateConversionDetails
			m.initializeConversionInputs()
			return m, nil
		case "failed":
			switch m.retryChoice {
			case 0: // Retry
				m.connectionTestResult = ""
				m.connectionError = nil
				m.testingConnection = true
				return m, m.testConnection()
			case 1: // Edit
				m.state = StateConnectionDetails
				m.connectionTestResult = ""
				m.connectionError = nil
				m.retryChoice = 0
				return m, nil
			case 2: // Quit
				return m, tea.Quit
			}
		}
		return m, nil

	case StateConversionDetails:
		if err := m.collectConversionValues(); err != nil {
			return m, nil
		}
		m.state = StateSummary
		return m, nil

	case StateSummary:
		m.state = StateCreating
		return m, m.createFiles()

	case StateDone:
		return m, tea.Quit

	case StateError:
		return m, tea.Quit
	}

	return m, nil
}

func (m WizardModel) handleUp() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateMetastoreType:
		if m.metastoreTypeIndex > 0 {
			m.metastoreTypeIndex--
		}
	case StateConnectionDetails, StateConversionDetails:
		if m.focusIndex > 0 {
			m.focusIndex--
			m.updateInputFocus()
		}
	case StateTestConnection:
		if m.connectionTestResult == "failed" && m.retryChoice > 0 {
			m.retryChoice--
		}
	}
	return m, nil
}

func (m WizardModel) handleDown() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateMetastoreType:
		if m.metastoreTypeIndex < len(MetastoreTypes)-1 {
			m.metastoreTypeIndex++
		}
	case StateConnectionDetails, StateConversionDetails:
		if m.focusIndex < len(m.inputs)-1 {
			m.focusIndex++
			m.updateInputFocus()
		}
	case StateTestConnection:
		if m.connectionTestResult == "failed" && m.retryChoice < 2 {
			m.retryChoice++
		}
	}
	return m, nil
}

func (m WizardModel) handleTab() (tea.Model, tea.Cmd) {
	if m.state == StateConnectionDetails || m.state == StateConversionDetails {
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		m.updateInputFocus()
	}
	return m, nil
}

func (m WizardModel) handleTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if (m.state == StateConnectionDetails || m.state == StateConversionDetails) && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

// Input management

func (m *WizardModel) initializeConnectionInputs() {
	m.inputs = []textinput.Model{}
	m.focusIndex = 0

	switch m.env.MetastoreType {
	case "postgres":
		m.inputs = append(m.inputs,
			m.makeInput("Environment name", "development", false),
			m.makeInput("Host", "localhost", false),
			m.makeInput("Port", "5432", false),
			m.makeInput("Database", "metastore", false),
			m.makeInput("User", "hive", false),
			m.makeInput("Password", "", true),
		)
	case "sqlite":
		m.inputs = append(m.inputs,
			m.makeInput("Environment name", "development", false),
			m.makeInput("Metastore file path", "metastore.db", false),
		)
	case "libsql":
		m.inputs = append(m.inputs,
			m.makeInput("Environment name", "production", false),
			m.makeInput("Database URL", "libsql://[name]-[org].turso.io", false),
			m.makeInput("Auth token", "", true),
		)
	}

	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
}

func (m *WizardModel) initializeConversionInputs() {
	m.inputs = []textinput.Model{
		m.makeInput("Destination database", "orc_db", false),
		m.makeInput("Destination table", "", false),
		m.makeInput("Destination data root", "/data/orc", false),
	}
	m.focusIndex = 0
	m.inputs[0].Focus()
}

func (m *WizardModel) makeInput(placeholder, value string, isPassword bool) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.SetValue(value)
	if isPassword {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '*'
	}
	return input
}

func (m *WizardModel) updateInputFocus() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *WizardModel) collectConnectionValues() error {
	switch m.env.MetastoreType {
	case "postgres":
		if len(m.inputs) < 6 {
			return fmt.Errorf("not enough inputs")
		}
		m.env.Name = m.inputs[0].Value()
		m.env.Host = m.inputs[1].Value()
		m.env.Port = m.inputs[2].Value()
		m.env.Database = m.inputs[3].Value()
		m.env.User = m.inputs[4].Value()
		m.env.Password = m.inputs[5].Value()

		if err := ValidateEnvironmentName(m.env.Name); err != nil {
			m.errors["name"] = err.Error()
			return err
		}
		if err := ValidatePort(m.env.Port); err != nil {
			m.errors["port"] = err.Error()
			return err
		}

	case "sqlite":
		if len(m.inputs) < 2 {
			return fmt.Errorf("not enough inputs")
		}
		m.env.Name = m.inputs[0].Value()
		m.env.FilePath = m.inputs[1].Value()

		if err := ValidateEnvironmentName(m.env.Name); err != nil {
			m.errors["name"] = err.Error()
			return err
		}

	case "libsql":
		if len(m.inputs) < 3 {
			return fmt.Errorf("not enough inputs")
		}
		m.env.Name = m.inputs[0].Value()
		m.env.URL = m.inputs[1].Value()
		m.env.AuthToken = m.inputs[2].Value()

		if err := ValidateEnvironmentName(m.env.Name); err != nil {
			m.errors["name"] = err.Error()
			return err
		}
	}

	return nil
}

func (m *WizardModel) collectConversionValues() error {
	if len(m.inputs) < 3 {
		return fmt.Errorf("not enough inputs")
	}
	m.conversion.DestinationDatabase = m.inputs[0].Value()
	m.conversion.DestinationTable = m.inputs[1].Value()
	m.conversion.DataRoot = m.inputs[2].Value()

	if err := ValidateHiveName(m.conversion.DestinationDatabase); err != nil {
		m.errors["destination_database"] = err.Error()
		return err
	}
	if err := ValidateHiveName(m.conversion.DestinationTable); err != nil {
		m.errors["destination_table"] = err.Error()
		return err
	}
	if err := ValidateDataRoot(m.conversion.DataRoot); err != nil {
		m.errors["data_root"] = err.Error()
		return err
	}
	return nil
}

// Message types for async operations

type connectionTestResultMsg struct {
	err error
}

func (m WizardModel) testConnection() tea.Cmd {
	return func() tea.Msg {
		connStr := BuildConnectionString(m.env)
		err := TestConnection(connStr, m.env.MetastoreType)
		return connectionTestResultMsg{err: err}
	}
}

type fileCreationResultMsg struct {
	result *InitResult
	err    error
}

func (m WizardModel) createFiles() tea.Cmd {
	return func() tea.Msg {
		result, err := GenerateFiles(m.env, m.conversion)
		return fileCreationResultMsg{result: result, err: err}
	}
}

// View renderers

func (m WizardModel) renderWelcome() string {
	var b strings.Builder

	b.WriteString(renderHeader("Orcify Init Wizard"))
	b.WriteString("\n\n")
	b.WriteString("Welcome! Let's set up Avro to ORC conversion for your warehouse.\n\n")
	b.WriteString(renderInfo("This wizard will help you:\n" +
		"  • Connect to your Hive metastore backing database\n" +
		"  • Pick a destination database and data root for ORC tables\n" +
		"  • Create orcify.toml and an environment file"))
	b.WriteString("\n\n")
	b.WriteString(renderStatusBar("Press Enter to continue, ctrl+c to quit"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderMetastoreType() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Metastore backing database"))
	b.WriteString("\n\n")
	for i, t := range MetastoreTypes {
		b.WriteString(renderOption(i == m.metastoreTypeIndex,
			fmt.Sprintf("%s %s (%s)", t.Icon, t.DisplayName, t.Description)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderStatusBar("↑/↓ to select, Enter to continue"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderConnectionDetails() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Connection details"))
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(input.Placeholder))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	if len(m.errors) > 0 {
		b.WriteString("\n")
		for _, msg := range m.errors {
			b.WriteString(renderError(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(renderStatusBar("Tab to move between fields, Enter to continue"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderTestConnection() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Testing connection"))
	b.WriteString("\n\n")

	if m.testingConnection {
		b.WriteString(iconSpinner + " Connecting to the metastore...\n")
	} else if m.connectionTestResult == "success" {
		b.WriteString(renderSuccess("Connected"))
		b.WriteString("\n\n")
		b.WriteString(renderStatusBar("Press Enter to continue"))
	} else if m.connectionTestResult == "failed" {
		b.WriteString(renderError("Connection failed"))
		b.WriteString("\n")
		if m.connectionError != nil {
			b.WriteString(labelStyle.Render(m.connectionError.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		for i, option := range []string{"Retry", "Edit connection details", "Quit"} {
			b.WriteString(renderOption(i == m.retryChoice, option))
			b.WriteString("\n")
		}
	}

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderConversionDetails() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Conversion target"))
	b.WriteString("\n\n")
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(input.Placeholder))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n")
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	if len(m.errors) > 0 {
		b.WriteString("\n")
		for _, msg := range m.errors {
			b.WriteString(renderError(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(renderStatusBar("Tab to move between fields, Enter to continue"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderSummary() string {
	var b strings.Builder

	b.WriteString(renderSectionHeader("Summary"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Environment:   %s (%s)\n", m.env.Name, m.env.MetastoreType))
	b.WriteString(fmt.Sprintf("Destination:   %s.%s\n", m.conversion.DestinationDatabase, m.conversion.DestinationTable))
	b.WriteString(fmt.Sprintf("Data root:     %s\n", m.conversion.DataRoot))
	b.WriteString("\n")
	b.WriteString(renderStatusBar("Press Enter to create orcify.toml and .env." + m.env.Name))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderCreating() string {
	return borderStyle.Render(iconSpinner + " Creating files...")
}

func (m WizardModel) renderDone() string {
	var b strings.Builder

	b.WriteString(renderSuccess("Setup complete"))
	b.WriteString("\n\n")
	if m.result != nil {
		if m.result.ConfigCreated {
			b.WriteString(fmt.Sprintf("  Created %s\n", m.result.ConfigPath))
		} else if m.result.ConfigUpdated {
			b.WriteString(fmt.Sprintf("  Updated %s\n", m.result.ConfigPath))
		}
		if m.result.EnvFile != "" {
			b.WriteString(fmt.Sprintf("  Created %s\n", m.result.EnvFile))
		}
		if m.result.GitignoreUpdated {
			b.WriteString("  Updated .gitignore\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(renderStatusBar("Press Enter to exit"))

	return borderStyle.Render(b.String())
}

func (m WizardModel) renderError() string {
	var b strings.Builder

	b.WriteString(renderError("Setup failed"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(m.err.Error())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(renderStatusBar("Press Enter to exit"))

	return borderStyle.Render(b.String())
}
