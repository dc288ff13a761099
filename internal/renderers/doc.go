// Package renderers provides the export renderers and the registry that
// dispatches an export format to its renderer.
//
// Each subpackage implements driven.Renderer for one format. Renderers are
// pure: they receive a materialised complaint set and RenderOptions and
// return bytes. They never touch the store or the clock.
//
// Renderers are registered with the Registry at startup via RegisterDefaults.
package renderers
