// Package config holds the editor's RC-file configuration: service
// endpoint, generation defaults, notification switches and theme
// definitions.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/eraserpad/internal/theme"
)

// API holds processing service settings.
type API struct {
	BaseURL string
	Timeout int // seconds, 0 means the client default
}

// Generation holds the default inpainting parameters sent with each
// processing request.
type Generation struct {
	Prompt            string
	NumInferenceSteps int
	GuidanceScale     float64
	Seed              int
	HasSeed           bool
}

// Notify holds desktop notification settings.
type Notify struct {
	Process bool
	Save    bool
	Copy    bool
}

// Config is the full application configuration.
type Config struct {
	Theme   string
	SaveDir string
	API     API
	Gen     Generation
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		API: API{BaseURL: "http://localhost:8000"},
		Gen: Generation{
			NumInferenceSteps: 50,
			GuidanceScale:     7.5,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[api]\n")
	fmt.Fprintf(&sb, "base_url = %s\n", c.API.BaseURL)
	if c.API.Timeout > 0 {
		fmt.Fprintf(&sb, "timeout = %d\n", c.API.Timeout)
	}
	sb.WriteString("\n")

	sb.WriteString("[generation]\n")
	if c.Gen.Prompt != "" {
		fmt.Fprintf(&sb, "prompt = %s\n", c.Gen.Prompt)
	}
	fmt.Fprintf(&sb, "num_inference_steps = %d\n", c.Gen.NumInferenceSteps)
	fmt.Fprintf(&sb, "guidance_scale = %g\n", c.Gen.GuidanceScale)
	if c.Gen.HasSeed {
		fmt.Fprintf(&sb, "seed = %d\n", c.Gen.Seed)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "process = %v\n", c.Notify.Process)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	// Sort theme names for deterministic output.
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "ToolbarBackground: %s\n", toHex(t.ToolbarBackground))
		fmt.Fprintf(&sb, "ButtonBackground: %s\n", toHex(t.ButtonBackground))
		fmt.Fprintf(&sb, "ButtonBackgroundHover: %s\n", toHex(t.ButtonBackgroundHover))
		fmt.Fprintf(&sb, "ButtonBackgroundPress: %s\n", toHex(t.ButtonBackgroundPress))
		fmt.Fprintf(&sb, "ButtonText: %s\n", toHex(t.ButtonText))
		fmt.Fprintf(&sb, "ButtonBorder: %s\n", toHex(t.ButtonBorder))
		fmt.Fprintf(&sb, "CheckerLight: %s\n", toHex(t.CheckerLight))
		fmt.Fprintf(&sb, "CheckerDark: %s\n", toHex(t.CheckerDark))
		fmt.Fprintf(&sb, "Stroke: %s\n", toHex(t.Stroke))
		fmt.Fprintf(&sb, "StatusBackground: %s\n", toHex(t.StatusBackground))
		fmt.Fprintf(&sb, "StatusText: %s\n", toHex(t.StatusText))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
