// Package components provides the theme-aware terminal widgets used by the
// floatkit playground: a trigger Button and a scrollable, filterable Menu
// that is shown as overlay content.
//
// # Theme System
//
// Themes are immutable and passed explicitly through RenderContext:
//
//	ctx := components.DefaultContext().WithTheme(components.MonochromeTheme())
//	output := menu.ViewWithContext(ctx)
//
// For simple cases, View() uses the default theme automatically.
//
// # Styling
//
// Components embed BaseComponent and compose StyleFunc appliers:
//
//	button := components.NewButton("Open").WithAppliers(components.Bold())
//
// Sizes reported by components are in terminal cells, which is the unit the
// overlay engine measures and places in.
package components
