package config

import (
	"fmt"

	"github.com/derailed/tcell/v2"
)

// Color represents a color in the application
type Color string

const (
	// DefaultColor represents a default color
	DefaultColor Color = "default"

	// TransparentColor represents the terminal bg color
	TransparentColor Color = "-"
)

// NewColor returns a new color
func NewColor(c string) Color {
	return Color(c)
}

// String returns color as string usable in tview color tags
func (c Color) String() string {
	if c.isHex() {
		return string(c)
	}
	if c == DefaultColor || c == TransparentColor || c == "" {
		return "-"
	}
	col := c.Color().TrueColor().Hex()
	if col < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", col)
}

func (c Color) isHex() bool {
	return len(c) == 7 && c[0] == '#'
}

// Color returns a view color
func (c Color) Color() tcell.Color {
	if c == DefaultColor || c == TransparentColor || c == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(string(c)).TrueColor()
}

// BodyColors defines colors for body elements
type BodyColors struct {
	FgColor   Color `yaml:"fgColor"`
	BgColor   Color `yaml:"bgColor"`
	LogoColor Color `yaml:"logoColor"`
}

// FrameColors defines colors for UI frame elements
type FrameColors struct {
	BorderColor Color `yaml:"borderColor"`
	FocusColor  Color `yaml:"focusColor"`
	TitleColor  Color `yaml:"titleColor"`
}

// ChatColors defines colors of the conversation log
type ChatColors struct {
	UserColor      Color `yaml:"userColor"`
	AssistantColor Color `yaml:"assistantColor"`
	CodeColor      Color `yaml:"codeColor"`
	HeadingColor   Color `yaml:"headingColor"`
}

// InboxColors defines colors for email rows
type InboxColors struct {
	UnreadColor    Color `yaml:"unreadColor"`
	ReadColor      Color `yaml:"readColor"`
	SenderColor    Color `yaml:"senderColor"`
	SelectedFg     Color `yaml:"selectedFg"`
	SelectedBg     Color `yaml:"selectedBg"`
	InsightColor   Color `yaml:"insightColor"`
	InsightMuted   Color `yaml:"insightMuted"`
	PlaceholderCol Color `yaml:"placeholderColor"`
}

// StatusColors defines toast colors
type StatusColors struct {
	SuccessColor Color `yaml:"successColor"`
	ErrorColor   Color `yaml:"errorColor"`
	InfoColor    Color `yaml:"infoColor"`
}

// ColorsConfig defines the complete color configuration
type ColorsConfig struct {
	Body   BodyColors   `yaml:"body"`
	Frame  FrameColors  `yaml:"frame"`
	Chat   ChatColors   `yaml:"chat"`
	Inbox  InboxColors  `yaml:"inbox"`
	Status StatusColors `yaml:"status"`
}

// DefaultColors returns the dark palette
func DefaultColors() *ColorsConfig {
	return DarkColors()
}

// DarkColors returns the dark palette
func DarkColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{
			FgColor:   NewColor("#f8f8f2"),
			BgColor:   NewColor("#282a36"),
			LogoColor: NewColor("#bd93f9"),
		},
		Frame: FrameColors{
			BorderColor: NewColor("#44475a"),
			FocusColor:  NewColor("#bd93f9"),
			TitleColor:  NewColor("#f8f8f2"),
		},
		Chat: ChatColors{
			UserColor:      NewColor("#8be9fd"),
			AssistantColor: NewColor("#f8f8f2"),
			CodeColor:      NewColor("#f1fa8c"),
			HeadingColor:   NewColor("#ff79c6"),
		},
		Inbox: InboxColors{
			UnreadColor:    NewColor("#ffb86c"),
			ReadColor:      NewColor("#6272a4"),
			SenderColor:    NewColor("#50fa7b"),
			SelectedFg:     NewColor("#282a36"),
			SelectedBg:     NewColor("#bd93f9"),
			InsightColor:   NewColor("#f8f8f2"),
			InsightMuted:   NewColor("#6272a4"),
			PlaceholderCol: NewColor("#6272a4"),
		},
		Status: StatusColors{
			SuccessColor: NewColor("#50fa7b"),
			ErrorColor:   NewColor("#ff5555"),
			InfoColor:    NewColor("#8be9fd"),
		},
	}
}

// LightColors returns the light palette
func LightColors() *ColorsConfig {
	return &ColorsConfig{
		Body: BodyColors{
			FgColor:   NewColor("#1f2328"),
			BgColor:   NewColor("#ffffff"),
			LogoColor: NewColor("#8250df"),
		},
		Frame: FrameColors{
			BorderColor: NewColor("#d0d7de"),
			FocusColor:  NewColor("#8250df"),
			TitleColor:  NewColor("#1f2328"),
		},
		Chat: ChatColors{
			UserColor:      NewColor("#0969da"),
			AssistantColor: NewColor("#1f2328"),
			CodeColor:      NewColor("#953800"),
			HeadingColor:   NewColor("#8250df"),
		},
		Inbox: InboxColors{
			UnreadColor:    NewColor("#1f2328"),
			ReadColor:      NewColor("#656d76"),
			SenderColor:    NewColor("#1a7f37"),
			SelectedFg:     NewColor("#ffffff"),
			SelectedBg:     NewColor("#8250df"),
			InsightColor:   NewColor("#1f2328"),
			InsightMuted:   NewColor("#656d76"),
			PlaceholderCol: NewColor("#8c959f"),
		},
		Status: StatusColors{
			SuccessColor: NewColor("#1a7f37"),
			ErrorColor:   NewColor("#cf222e"),
			InfoColor:    NewColor("#0969da"),
		},
	}
}
