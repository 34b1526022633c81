package main

import (
	"fmt"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-msgform/internal/loader"
	"github.com/goliatone/go-msgform/pkg/render"
	"github.com/goliatone/go-msgform/pkg/renderers/html"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		output    string
		themePath string
		variant   string
		tplPath   string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the widget tree of a message",
		Long: `Binds the message, applies the view and prints the materialized widget
tree as yaml, json or an html fragment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			binding, err := a.open(ctx, cmd)
			if err != nil {
				return err
			}
			if output == "" && a.cfg != nil {
				output = a.cfg.View.Format
			}
			if output == "" {
				output = "yaml"
			}

			renderers := render.NewDefaultRegistry()
			opts := []html.Option{}
			if themePath != "" {
				manifest, err := a.loadTheme(cmd, themePath)
				if err != nil {
					return err
				}
				opts = append(opts, html.WithTheme(html.ThemeFromManifest(manifest, variant)))
			}
			if tplPath != "" {
				content, err := a.loadText(cmd, tplPath)
				if err != nil {
					return err
				}
				opts = append(opts, html.WithTemplate(content))
			}
			htmlRenderer, err := html.New(opts...)
			if err != nil {
				return err
			}
			renderers.MustRegister(htmlRenderer)

			renderer, err := renderers.Get(output)
			if err != nil {
				return err
			}
			return renderer.Render(cmd.OutOrStdout(), binding.Widget.Snapshot())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "yaml, json or html (default from config)")
	cmd.Flags().StringVar(&themePath, "theme", "", "theme manifest (yaml) applied to html output")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant")
	cmd.Flags().StringVar(&tplPath, "template", "", "pongo2 template replacing the built-in html layout")
	return cmd
}

func (a *app) loadTheme(cmd *cobra.Command, location string) (*theme.Manifest, error) {
	src, err := loader.Locate(location)
	if err != nil {
		return nil, err
	}
	doc, err := a.loader().Load(cmd.Context(), src)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	var file themeFile
	if err := yaml.Unmarshal(doc.Raw(), &file); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", location, err)
	}
	return file.manifest(), nil
}

func (a *app) loadText(cmd *cobra.Command, location string) (string, error) {
	src, err := loader.Locate(location)
	if err != nil {
		return "", err
	}
	doc, err := a.loader().Load(cmd.Context(), src)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}
	return string(doc.Raw()), nil
}

// themeFile is the on-disk theme manifest.
type themeFile struct {
	Name     string                  `yaml:"name"`
	Version  string                  `yaml:"version"`
	Tokens   map[string]string       `yaml:"tokens"`
	Assets   themeAssets             `yaml:"assets"`
	Variants map[string]themeVariant `yaml:"variants"`
}

type themeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type themeVariant struct {
	Tokens map[string]string `yaml:"tokens"`
	Assets themeAssets       `yaml:"assets"`
}

func (f themeFile) manifest() *theme.Manifest {
	manifest := &theme.Manifest{
		Name:    f.Name,
		Version: f.Version,
		Tokens:  f.Tokens,
		Assets:  theme.Assets{Prefix: f.Assets.Prefix, Files: f.Assets.Files},
	}
	if len(f.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(f.Variants))
		for name, v := range f.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens: v.Tokens,
				Assets: theme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return manifest
}
