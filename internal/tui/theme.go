package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Teal      = lipgloss.Color("#00D4AA")
	DimTeal   = lipgloss.Color("#0A5C4C")
	Gold      = lipgloss.Color("#FFD700")
	MidGray   = lipgloss.Color("#3a3a4e")
	LightGray = lipgloss.Color("#aaaaaa")
	White     = lipgloss.Color("#e0e0e0")
	Red       = lipgloss.Color("#FF4136")

	TitleStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Background(DimTeal).
			Foreground(White).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Teal).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White)

	DimStyle = lipgloss.NewStyle().
			Foreground(MidGray)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Gold)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	InputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(DimTeal).
				Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Teal)

	HelpStyle = lipgloss.NewStyle().
			Foreground(MidGray)
)

const Banner = `
  ██████╗ ██╗      ██████╗  ██████╗ ███████╗███╗   ███╗██╗████████╗██╗  ██╗
  ██╔══██╗██║     ██╔═══██╗██╔════╝ ██╔════╝████╗ ████║██║╚══██╔══╝██║  ██║
  ██████╔╝██║     ██║   ██║██║  ███╗███████╗██╔████╔██║██║   ██║   ███████║
  ██╔══██╗██║     ██║   ██║██║   ██║╚════██║██║╚██╔╝██║██║   ██║   ██╔══██║
  ██████╔╝███████╗╚██████╔╝╚██████╔╝███████║██║ ╚═╝ ██║██║   ██║   ██║  ██║
  ╚═════╝ ╚══════╝ ╚═════╝  ╚═════╝ ╚══════╝╚═╝     ╚═╝╚═╝   ╚═╝   ╚═╝  ╚═╝
`
