package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/eraserpad/internal/api"
	"github.com/example/eraserpad/internal/canvas"
	"github.com/example/eraserpad/internal/imageio"
	"github.com/example/eraserpad/internal/render"
)

// loadImageFn is swappable for tests.
var loadImageFn = imageio.Load

// regionList parses repeated -region flags of the form "x,y,w,h".
type regionList []canvas.Region

func (rl *regionList) String() string {
	parts := make([]string, 0, len(*rl))
	for _, r := range *rl {
		parts = append(parts, fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height))
	}
	return strings.Join(parts, " ")
}

func (rl *regionList) Set(v string) error {
	fields := strings.Split(v, ",")
	if len(fields) != 4 {
		return fmt.Errorf("region must be x,y,w,h: %q", v)
	}
	nums := make([]int, 4)
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return fmt.Errorf("region must be x,y,w,h: %q", v)
		}
		nums[i] = n
	}
	if nums[2] <= 0 || nums[3] <= 0 {
		return fmt.Errorf("region must have positive size: %q", v)
	}
	*rl = append(*rl, canvas.Region{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]})
	return nil
}

// processCmd sends an image and regions to the service without opening a
// window.
type processCmd struct {
	file    string
	output  string
	prompt  string
	steps   int
	scale   float64
	seed    int
	hasSeed bool
	shadow  bool
	timeout time.Duration
	regions regionList
	*root
	fs *flag.FlagSet
}

func (p *processCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parseProcessCmd(args []string, r *root) (*processCmd, error) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	p := &processCmd{root: r, fs: fs, seed: -1}
	fs.StringVar(&p.file, "file", "", "image file to process")
	fs.StringVar(&p.output, "output", "processed.png", "output file path")
	fs.StringVar(&p.prompt, "prompt", "", "inpainting prompt")
	fs.IntVar(&p.steps, "steps", 0, "number of inference steps (0 uses the service default)")
	fs.Float64Var(&p.scale, "guidance", 0, "guidance scale (0 uses the service default)")
	fs.IntVar(&p.seed, "seed", -1, "random seed (-1 for random)")
	fs.BoolVar(&p.shadow, "shadow", false, "add a drop shadow to the output image")
	fs.DurationVar(&p.timeout, "timeout", 0, "request timeout (0 uses the [api] config timeout)")
	fs.Var(&p.regions, "region", "erase region as x,y,w,h (repeatable)")
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if p.file == "" && fs.NArg() > 0 {
		p.file = fs.Arg(0)
	}
	if p.file == "" {
		return nil, &UsageError{of: p}
	}
	if len(p.regions) == 0 {
		return nil, fmt.Errorf("at least one -region is required")
	}
	p.hasSeed = p.seed >= 0
	return p, nil
}

func (p *processCmd) Run() error {
	img, _, err := loadImageFn(p.file)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", p.file, err)
	}

	timeout := p.timeout
	if timeout <= 0 {
		timeout = time.Duration(p.root.config.API.Timeout) * time.Second
	}
	client, err := api.NewWithTimeout(p.root.config.API.BaseURL, timeout)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if info, err := client.Health(ctx); err != nil {
		return fmt.Errorf("service unavailable at %s: %w", p.root.config.API.BaseURL, err)
	} else {
		fmt.Fprintf(os.Stderr, "service %s (%s)\n", info.Status, info.Version)
	}

	dataURL, err := imageio.EncodeDataURL(img)
	if err != nil {
		return err
	}

	// Validation pass: the service checks format and size limits here so a
	// bad input fails before the expensive processing call.
	up, err := client.Upload(ctx, dataURL)
	if err != nil {
		return fmt.Errorf("upload rejected: %w", err)
	}
	if up.ImageID != "" {
		fmt.Fprintf(os.Stderr, "uploaded as %s\n", up.ImageID)
	}

	prompt := p.prompt
	if prompt == "" {
		prompt = p.root.config.Gen.Prompt
	}
	r0 := p.regions[0]
	req := api.ProcessRequest{
		Image: dataURL,
		Coordinates: []api.Coordinate{
			{X: float64(r0.X), Y: float64(r0.Y)},
			{X: float64(r0.X + r0.Width), Y: float64(r0.Y)},
			{X: float64(r0.X + r0.Width), Y: float64(r0.Y + r0.Height)},
			{X: float64(r0.X), Y: float64(r0.Y + r0.Height)},
		},
		Regions:           p.regions,
		Prompt:            prompt,
		NumInferenceSteps: p.steps,
		GuidanceScale:     p.scale,
	}
	if p.hasSeed {
		seed := p.seed
		req.Seed = &seed
	} else if p.root.config.Gen.HasSeed {
		seed := p.root.config.Gen.Seed
		req.Seed = &seed
	}

	res, err := client.Process(ctx, req)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if !p.shadow && strings.HasSuffix(p.output, ".png") {
		// The download endpoint already returns finished PNG bytes.
		data, err := client.Download(ctx, res.ProcessedImage)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		if err := os.WriteFile(p.output, data, 0644); err != nil {
			return fmt.Errorf("failed to save %s: %w", p.output, err)
		}
		fmt.Fprintf(os.Stderr, "processed in %.1fs, saved to %s\n", res.ProcessingTime, p.output)
		p.root.notifier.Process(p.output, nil)
		return nil
	}

	out, _, err := imageio.DecodeDataURL(res.ProcessedImage)
	if err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}

	final := imageio.ToRGBA(out)
	if p.shadow {
		final, _ = render.ApplyShadow(final, render.DefaultShadowOptions())
	}

	if err := imageio.Save(p.output, final); err != nil {
		return fmt.Errorf("failed to save %s: %w", p.output, err)
	}
	fmt.Fprintf(os.Stderr, "processed in %.1fs, saved to %s\n", res.ProcessingTime, p.output)
	p.root.notifier.Process(p.output, imageio.Thumbnail(final, 256))
	return nil
}
