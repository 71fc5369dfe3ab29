package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/mcscaler"
	"github.com/xaionaro-go/mcscaler/capability"
	"github.com/xaionaro-go/mcscaler/config"
	"github.com/xaionaro-go/mcscaler/metrics"
	"github.com/xaionaro-go/mcscaler/setfile"
	"github.com/xaionaro-go/mcscaler/simulator"
	"github.com/xaionaro-go/mcscaler/types"
	"github.com/xaionaro-go/observability"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags] --output WxH [--output WxH ...]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to the YAML config")
	variantName := pflag.String("variant", "", "hardware revision (overrides the config)")
	setfilePath := pflag.String("setfile", "", "path to a compiled setfile")
	setfileSourcePath := pflag.String("setfile-source", "", "path to a TOML setfile source (instead of --setfile)")
	scenario := pflag.Uint32("scenario", 0, "the setfile scenario to apply")
	inputSize := pflag.String("input", "1920x1080", "the input size")
	outputSizes := pflag.StringArray("output", nil, "an output size, one per output channel")
	frames := pflag.Int("frames", 1, "the amount of frames to shoot")
	stripes := pflag.Uint32("stripes", 1, "the amount of stripes per frame")
	stripeMargin := pflag.Uint32("stripe-margin", 64, "the margin of the interior stripe edges")
	frameDuration := pflag.Duration("frame-duration", time.Millisecond, "the simulated frame processing time")
	renderDir := pflag.String("render-dir", "", "a directory to write the rendered outputs of the last frame to")
	dump := pflag.Bool("dump", false, "dump the registers after the last frame")
	metricsAddr := pflag.String("metrics-listen-addr", "", "an address to serve the Prometheus metrics at (overrides the config)")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()
	if len(*outputSizes) == 0 || len(pflag.Args()) != 0 {
		pflag.Usage()
		os.Exit(1)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			l.Fatal(err)
		}
	}
	if *variantName != "" {
		cfg.Variant = *variantName
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = *metricsAddr
	}

	variant, err := capability.Lookup(cfg.Variant)
	if err != nil {
		l.Fatalf("%v (known: %v)", err, capability.Names())
	}

	input, err := parseSize(*inputSize)
	if err != nil {
		l.Fatal(err)
	}
	var targets []types.Size
	for _, s := range *outputSizes {
		size, err := parseSize(s)
		if err != nil {
			l.Fatal(err)
		}
		targets = append(targets, size)
	}
	if len(targets) > types.NumOutputChannels {
		l.Fatalf("at most %d outputs are supported", types.NumOutputChannels)
	}

	opts := mcscaler.Options{
		mcscaler.OptionConfig(cfg),
	}
	if cfg.Metrics.Enabled {
		collector, err := metrics.NewCollector(cfg.Metrics.Namespace)
		if err != nil {
			l.Fatal(err)
		}
		opts = append(opts, mcscaler.OptionMetrics{Collector: collector})
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(cfg.Metrics.Listen, mux)) })
	}

	if *setfilePath != "" || *setfileSourcePath != "" {
		selector, err := loadSetfile(ctx, *setfilePath, *setfileSourcePath, *scenario)
		if err != nil {
			l.Fatal(err)
		}
		opts = append(opts, mcscaler.OptionSetfiles{Selector: selector})
	}

	engine := simulator.New(nil)
	engine.FrameDuration.Store(int64(*frameDuration))
	d, err := mcscaler.New(ctx, variant, engine, opts...)
	if err != nil {
		l.Fatal(err)
	}
	engine.SetInterrupt(func(ctx context.Context) {
		if _, err := d.HandleInterrupt(ctx); err != nil {
			l.Warn(err)
		}
	})

	if err := d.Open(ctx); err != nil {
		l.Fatal(err)
	}
	if err := d.Init(ctx); err != nil {
		l.Fatal(err)
	}
	if err := d.Enable(ctx); err != nil {
		l.Fatal(err)
	}

	var last *mcscaler.ShotResult
	for frame := 0; frame < *frames; frame++ {
		for _, req := range buildRequests(uint64(frame), input, targets, *stripes, *stripeMargin) {
			result, err := d.Shot(ctx, req)
			if err != nil {
				l.Fatal(err)
			}
			if err := d.WaitIdle(ctx); err != nil {
				l.Fatal(err)
			}
			fmt.Println(result)
			last = result
		}
	}
	fmt.Println(d.Counters())

	if *renderDir != "" && last != nil {
		if err := render(ctx, engine, input, last, *renderDir); err != nil {
			l.Fatal(err)
		}
	}
	if *dump {
		if err := d.Dump(ctx, os.Stdout); err != nil {
			l.Fatal(err)
		}
	}

	if err := d.Disable(ctx); err != nil {
		l.Fatal(err)
	}
	if err := d.Close(ctx); err != nil {
		l.Fatal(err)
	}
}

func parseSize(s string) (types.Size, error) {
	var size types.Size
	if _, err := fmt.Sscanf(s, "%dx%d", &size.Width, &size.Height); err != nil {
		return types.Size{}, fmt.Errorf("unable to parse size '%s': %w", s, err)
	}
	return size, nil
}

func loadSetfile(
	ctx context.Context,
	path string,
	sourcePath string,
	scenario uint32,
) (*setfile.Selector, error) {
	selector := setfile.NewSelector()
	switch {
	case sourcePath != "":
		src, err := setfile.DecodeSourceFile(sourcePath)
		if err != nil {
			return nil, err
		}
		t, err := src.Compile()
		if err != nil {
			return nil, fmt.Errorf("unable to compile '%s': %w", sourcePath, err)
		}
		selector.LoadTable(ctx, 0, t)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read '%s': %w", path, err)
		}
		if err := selector.Load(ctx, 0, data); err != nil {
			return nil, fmt.Errorf("unable to load '%s': %w", path, err)
		}
	}
	if _, err := selector.Apply(ctx, 0, 0, scenario); err != nil {
		return nil, err
	}
	return selector, nil
}

var formatNV12 = types.ImageFormat{
	Format:   types.PixelFormatYUV420,
	Planes:   2,
	BitDepth: 8,
	Order:    types.OrderCbCr,
}

// buildRequests returns the shots of one frame: a single one, or one per
// stripe.
func buildRequests(
	frame uint64,
	input types.Size,
	targets []types.Size,
	stripes uint32,
	margin uint32,
) []*types.FrameRequest {
	newRequest := func(id uint64) *types.FrameRequest {
		req := &types.FrameRequest{
			ID: id,
			Input: types.InputConfig{
				Size:   input,
				Format: formatNV12,
			},
			Source: types.Buffer{Planes: []uint64{0x1000_0000}},
		}
		for ch, target := range targets {
			req.Outputs[ch] = types.OutputConfig{
				Enabled: true,
				Target:  target,
				Format:  formatNV12,
			}
			base := uint64(0x2000_0000) + uint64(ch)<<26
			req.Destinations[ch] = types.BufferSet{Buffers: []types.Buffer{{Planes: []uint64{base, base + 1<<25}}}}
		}
		return req
	}

	if stripes <= 1 {
		return []*types.FrameRequest{newRequest(frame)}
	}
	var result []*types.FrameRequest
	for idx, sc := range types.NewFrameStripes(input, stripes, margin, 2) {
		req := newRequest(frame*uint64(stripes) + uint64(idx))
		req.Stripe = &sc
		result = append(result, req)
	}
	return result
}

func render(
	ctx context.Context,
	engine *simulator.Engine,
	input types.Size,
	result *mcscaler.ShotResult,
	dir string,
) error {
	src := simulator.TestPattern(input)
	for ch, c := range result.Channels {
		if !c.Enabled {
			continue
		}
		img, err := engine.Render(ctx, src, ch)
		if err != nil {
			return fmt.Errorf("unable to render output %d: %w", ch, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("output%d.png", ch))
		if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("unable to save '%s': %w", path, err)
		}
		logger.Infof(ctx, "wrote %s", path)
	}
	return nil
}
