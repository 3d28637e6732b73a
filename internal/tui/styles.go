package tui

import "github.com/charmbracelet/lipgloss"

// Colors - using a professional dark theme
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	bgColor        = lipgloss.Color("#1F2937") // Dark gray
)

// List item styles
var (
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(textColor)

	dimItemStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Grid styles
var (
	gridHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	gridSortedHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor)

	gridSelectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(textColor)

	gridSelectedCellStyle = lipgloss.NewStyle().
				Background(primaryColor).
				Foreground(lipgloss.Color("#FFF")).
				Bold(true)
)

// Chart styles
var (
	chartBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	chartSelectedBarStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	chartLabelStyle = lipgloss.NewStyle().
			Foreground(textColor)
)

// Status bar styles
var (
	statusBarStyle = lipgloss.NewStyle().
			Background(bgColor).
			Foreground(textColor).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	statusValueStyle = lipgloss.NewStyle().
				Foreground(textColor)
)

// Filter badge styles
var (
	filterBadgeStyle = lipgloss.NewStyle().
				Background(secondaryColor).
				Foreground(lipgloss.Color("#FFF")).
				Padding(0, 1)

	busyBadgeStyle = lipgloss.NewStyle().
			Background(accentColor).
			Foreground(lipgloss.Color("#000")).
			Padding(0, 1).
			Bold(true)
)

// Pane border title styles
var (
	borderTitleStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	focusedBorderTitleStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)
)

// Input bar styles
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(textColor)
)

// Help styles
var (
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// Error and success styles
var (
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)
)

// Modal style
var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(primaryColor).
	Padding(1, 2)

// Title style
var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(primaryColor).
	MarginBottom(1)
