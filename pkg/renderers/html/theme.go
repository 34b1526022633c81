package html

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the asset key looked up for the theme stylesheet.
const StylesheetAsset = "msgform.stylesheet"

// ThemeFromManifest flattens a manifest and one of its variants into renderer
// settings. Variant tokens, templates and asset files override the base ones.
func ThemeFromManifest(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Tokens:   mergeStrings(manifest.Tokens, nil),
		Partials: mergeStrings(manifest.Templates, nil),
	}

	prefix := manifest.Assets.Prefix
	files := mergeStrings(manifest.Assets.Files, nil)
	if v, ok := manifest.Variants[variant]; ok {
		cfg.Tokens = mergeStrings(cfg.Tokens, v.Tokens)
		cfg.Partials = mergeStrings(cfg.Partials, v.Templates)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	if len(cfg.Tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
		for key, value := range cfg.Tokens {
			cfg.CSSVars["--"+key] = value
		}
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

// ThemeFromSelection is ThemeFromManifest for a resolved selection.
func ThemeFromSelection(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := ThemeFromManifest(selection.Manifest, selection.Variant)
	if cfg != nil && selection.Theme != "" {
		cfg.Theme = selection.Theme
	}
	return cfg
}

type themeView struct {
	Name       string
	Variant    string
	Style      string
	Stylesheet string
}

func newThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Style:   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(StylesheetAsset)
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+vars[key])
	}
	return strings.Join(parts, "; ")
}

func mergeStrings(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
