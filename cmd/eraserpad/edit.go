package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/eraserpad/internal/api"
	"github.com/example/eraserpad/internal/editor"
	"github.com/example/eraserpad/internal/imageio"
)

// editCmd opens an image in the interactive window.
type editCmd struct {
	file   string
	output string
	prompt string
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.StringVar(&e.file, "file", "", "image file to edit")
	fs.StringVar(&e.output, "output", "", "output file path (default <file>_edited.png)")
	fs.StringVar(&e.prompt, "prompt", "", "inpainting prompt sent with processing requests")
	fs.Usage = usageFunc(e)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if e.file == "" && fs.NArg() > 0 {
		e.file = fs.Arg(0)
	}
	if e.file == "" {
		return nil, &UsageError{of: e}
	}
	if e.output == "" {
		ext := filepath.Ext(e.file)
		e.output = strings.TrimSuffix(e.file, ext) + "_edited.png"
	}
	return e, nil
}

func (e *editCmd) Run() error {
	img, _, err := imageio.Load(e.file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", e.file, err)
	}
	if e.prompt != "" {
		e.root.config.Gen.Prompt = e.prompt
	}

	var client *api.Client
	if e.root.config.API.BaseURL != "" {
		timeout := time.Duration(e.root.config.API.Timeout) * time.Second
		client, err = api.NewWithTimeout(e.root.config.API.BaseURL, timeout)
		if err != nil {
			return fmt.Errorf("invalid api url: %w", err)
		}
	}

	ed := editor.New(
		editor.WithImage(imageio.ToRGBA(img)),
		editor.WithOutput(e.output),
		editor.WithConfig(e.root.config),
		editor.WithTheme(e.root.activeTheme),
		editor.WithClient(client),
		editor.WithNotifier(e.root.notifier),
	)
	ed.Run()
	return nil
}
