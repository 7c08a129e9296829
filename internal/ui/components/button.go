package components

import (
	"github.com/charmbracelet/lipgloss"
)

// ButtonVariant selects the button's color scheme.
type ButtonVariant int

const (
	ButtonVariantPrimary ButtonVariant = iota
	ButtonVariantMuted
)

// Button is the trigger element an overlay anchors to. It is visual only;
// hit testing happens in the host.
type Button struct {
	BaseComponent
	label    string
	variant  ButtonVariant
	disabled bool
	active   bool
}

// NewButton creates a new button with the given label.
func NewButton(label string) *Button {
	return &Button{
		BaseComponent: NewBaseComponent(),
		label:         label,
		variant:       ButtonVariantPrimary,
	}
}

// View renders the button.
func (b *Button) View() string {
	return b.ViewWithContext(DefaultContext())
}

// ViewWithContext renders the button with the given theme context.
func (b *Button) ViewWithContext(ctx RenderContext) string {
	return b.computeStyle(ctx.Theme).Render(b.label)
}

func (b *Button) computeStyle(theme Theme) lipgloss.Style {
	style := b.ComputeStyle(theme).Padding(0, 1)
	style = Bordered()(style, theme)

	switch b.variant {
	case ButtonVariantMuted:
		style = Foreground(PaletteMuted)(style, theme)
	default:
		style = Foreground(PalettePrimary)(style, theme)
	}

	if b.disabled {
		style = style.Faint(true)
	}
	if b.active {
		style = style.Bold(true)
		if theme.Accent != "" {
			style = style.BorderForeground(theme.Accent)
		}
	}
	return style
}

// WithVariant sets the button variant.
func (b *Button) WithVariant(variant ButtonVariant) *Button {
	b.variant = variant
	return b
}

// WithDisabled sets the disabled state.
func (b *Button) WithDisabled(disabled bool) *Button {
	b.disabled = disabled
	return b
}

// WithActive marks the button as the anchor of an open overlay.
func (b *Button) WithActive(active bool) *Button {
	b.active = active
	return b
}

// WithAppliers applies theme-based style modifiers.
func (b *Button) WithAppliers(appliers ...StyleFunc) *Button {
	b.AddAppliers(appliers...)
	return b
}

// Label returns the button label.
func (b *Button) Label() string {
	return b.label
}

// SetLabel updates the button label.
func (b *Button) SetLabel(label string) *Button {
	b.label = label
	return b
}

// IsDisabled returns true if the button is disabled.
func (b *Button) IsDisabled() bool {
	return b.disabled
}

// IsActive returns true if the button is active.
func (b *Button) IsActive() bool {
	return b.active
}

// Size returns the rendered width and height in cells.
func (b *Button) Size(ctx RenderContext) (int, int) {
	return Size(b.ViewWithContext(ctx))
}
