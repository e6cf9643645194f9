package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spikelab/internal/analysis"
	"github.com/san-kum/spikelab/internal/config"
	"github.com/san-kum/spikelab/internal/connector"
	"github.com/san-kum/spikelab/internal/datastore"
	"github.com/san-kum/spikelab/internal/dist"
	"github.com/san-kum/spikelab/internal/engine"
	"github.com/san-kum/spikelab/internal/experiment"
	"github.com/san-kum/spikelab/internal/export"
	"github.com/san-kum/spikelab/internal/logging"
	"github.com/san-kum/spikelab/internal/model"
	"github.com/san-kum/spikelab/internal/sheet"
	"github.com/san-kum/spikelab/internal/space"
	"github.com/san-kum/spikelab/internal/stimuli"
	"github.com/san-kum/spikelab/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	duration   float64
	mode       string
	seed       int64
	binWidth   float64
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "spikelab",
		Short: "spiking network experiment lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".spikelab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [experiment]",
		Short: "run experiment",
		Args:  cobra.ExactArgs(1),
		RunE:  runExperiment,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&duration, "time", 1000.0, "trial duration (ms)")
	runCmd.Flags().StringVar(&mode, "mode", "", "operating mode (reset or continuous)")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded stimuli",
		RunE:  listStimuli,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [stimulus_id]",
		Short: "plot recorded firing rates",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRecording,
	}
	plotCmd.Flags().Float64Var(&binWidth, "bin", 10.0, "histogram bin width (ms)")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [stimulus_id]",
		Short: "power spectrum of the population rate",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRecording,
	}
	spectrumCmd.Flags().Float64Var(&binWidth, "bin", 2.0, "histogram bin width (ms)")

	exportCmd := &cobra.Command{
		Use:   "export [stimulus_id]",
		Short: "export recorded segments as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRecording,
	}

	rasterCmd := &cobra.Command{
		Use:   "raster [stimulus_id]",
		Short: "export a spike raster as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  rasterRecording,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [experiment]",
		Short: "list available presets for an experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for experiment: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	experimentsCmd := &cobra.Command{
		Use:   "experiments",
		Short: "list available experiments",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().List() {
				fmt.Println(name)
			}
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [experiment]",
		Short: "run experiment with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().Float64Var(&duration, "time", 1000.0, "trial duration (ms)")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	batchCmd := &cobra.Command{
		Use:   "batch [experiment...]",
		Short: "run independent experiments concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().Float64Var(&duration, "time", 1000.0, "trial duration (ms)")
	batchCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	batchCmd.Flags().IntVar(&workers, "workers", 2, "concurrent experiments")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, spectrumCmd, exportCmd, rasterCmd, presetsCmd, experimentsCmd, liveCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for an experiment from
// preset, config file, and flags, in increasing precedence.
func loadConfig(cmd *cobra.Command, experimentName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Experiment.Name = experimentName

	if preset != "" {
		p := config.GetPreset(experimentName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(experimentName))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		cfg.Experiment.Name = experimentName
	}

	if cmd.Flags().Changed("time") {
		cfg.Experiment.Duration = duration
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = mode
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildModel assembles the network, sheets, connectors, and input layer
// described by cfg into a ready-to-run model.
func buildModel(cfg *config.Config, logger *slog.Logger) (*model.Model, error) {
	eng := &engine.Network{}
	if err := eng.Setup(cfg.Timestep, cfg.MinDelay, cfg.MaxDelay, cfg.Threads); err != nil {
		return nil, err
	}

	md := model.ResetEachTrial
	if cfg.Mode == "continuous" {
		md = model.Continuous
	}

	m, err := model.New(eng, model.Config{
		Mode:               md,
		NullStimulusPeriod: cfg.NullStimulusPeriod,
		Coordinator:        dist.FromEnv(),
		Logger:             logger,
	})
	if err != nil {
		return nil, err
	}

	lifs := make(map[string]*sheet.LIFSheet, len(cfg.Sheets))
	for _, sc := range cfg.Sheets {
		params := sheet.DefaultLIFParams()
		if sc.Tau > 0 {
			params.Tau = sc.Tau
		}
		s := sheet.NewLIFSheet(sc.Name, sc.Neurons, cfg.Timestep, params)
		eng.Register(s)
		if err := m.RegisterSheet(s); err != nil {
			return nil, err
		}
		lifs[sc.Name] = s
	}

	for _, cc := range cfg.Connectors {
		u := connector.NewUniform(cc.Name, lifs[cc.Source], lifs[cc.Target], cc.Weight, cc.Delay)
		if err := u.Connect(); err != nil {
			return nil, err
		}
		if err := m.RegisterConnector(u); err != nil {
			return nil, err
		}
	}

	if cfg.InputLayer != nil {
		layer := space.NewRateInputLayer(lifs[cfg.InputLayer.Target], cfg.InputLayer.Gain, cfg.Timestep)
		m.SetInputSpace(space.New(), layer)
	}
	return m, nil
}

func experimentParams(cfg *config.Config) experiment.Params {
	return experiment.Params{
		Duration:    cfg.Experiment.Duration,
		Rates:       cfg.Experiment.Rates,
		Sheets:      cfg.Experiment.Sheets,
		DrivePeriod: cfg.Experiment.DrivePeriod,
		Weights:     cfg.Experiment.Weights,
		SelectN:     cfg.Experiment.SelectN,
		Seed:        cfg.Seed,
	}
}

func openStore() (*datastore.SQLite, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return datastore.OpenSQLite(filepath.Join(dataDir, "recordings.db"))
}

func runExperiment(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig(cmd, name)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logLevel, os.Stderr)

	m, err := buildModel(cfg, logger)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	exp, err := experiment.NewRegistry().Get(name, m, logger, experimentParams(cfg))
	if err != nil {
		return err
	}

	toPresent, err := experiment.FilterPresented(exp.Stimuli(), store)
	if err != nil {
		return err
	}
	if len(toPresent) == 0 {
		fmt.Println("all stimuli already presented")
		return nil
	}

	fmt.Printf("running %s (%d of %d stimuli, %s mode)...\n",
		name, len(toPresent), len(exp.Stimuli()), cfg.Mode)

	elapsed, err := exp.Run(store, toPresent)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("simulated time: %.1f ms\n", m.SimulatorTime())
	return nil
}

func listStimuli(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ids, err := store.StimulusIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STIMULUS\tSHEETS\tSPIKES")
	for _, id := range ids {
		segments, err := store.Recordings(id)
		if err != nil {
			return err
		}
		spikes := 0
		for _, seg := range segments {
			spikes += seg.SpikeCount()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", id, len(segments), spikes)
	}
	return w.Flush()
}

func plotRecording(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	segments, err := store.Recordings(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no recordings for stimulus: %s", args[0])
	}

	fmt.Printf("stimulus: %s\n", args[0])
	fmt.Printf("segments: %d\n\n", len(segments))

	maxPlots := 6
	if len(segments) < maxPlots {
		maxPlots = len(segments)
	}
	for _, seg := range segments[:maxPlots] {
		rate, err := analysis.PopulationRate(seg, binWidth)
		if err != nil {
			return err
		}
		caption := fmt.Sprintf("%s [%.0f-%.0f ms], mean %.2f Hz/neuron",
			seg.Sheet, seg.Start, seg.End, analysis.MeanRate(seg))
		graph := asciigraph.Plot(rate,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func spectrumRecording(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	segments, err := store.Recordings(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no recordings for stimulus: %s", args[0])
	}

	seg := segments[0]
	rate, err := analysis.PopulationRate(seg, binWidth)
	if err != nil {
		return err
	}

	ps := analysis.RateSpectrum(rate)
	plotData := ps[:len(ps)/4]

	fmt.Printf("stimulus: %s\n", args[0])
	fmt.Printf("sheet: %s\n\n", seg.Sheet)
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("population rate power spectrum"),
	)
	fmt.Println(graph)

	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(plotData); i++ {
		if plotData[i] > maxPower {
			maxPower = plotData[i]
			maxIdx = i
		}
	}
	// bin index -> Hz: sampling rate is 1000/binWidth Hz over len(ps)*2 bins
	freq := float64(maxIdx) * 1000.0 / (binWidth * float64(len(ps)*2))
	fmt.Printf("\ndominant frequency: %.2f hz\n", freq)
	return nil
}

func exportRecording(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	segments, err := store.Recordings(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no recordings for stimulus: %s", args[0])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"stimulus_id": args[0],
		"segments":    segments,
	})
}

func rasterRecording(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	segments, err := store.Recordings(args[0])
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("no recordings for stimulus: %s", args[0])
	}

	fmt.Println(export.RasterSVG(segments[0], 800, 400))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := loadConfig(cmd, name)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(logLevel, io.Discard)

	m, err := buildModel(cfg, logger)
	if err != nil {
		return err
	}

	exp, err := experiment.NewRegistry().Get(name, m, logger, experimentParams(cfg))
	if err != nil {
		return err
	}

	mem := datastore.NewMemory()
	toPresent := exp.Stimuli()
	updates := make(chan tea.Msg)

	go func() {
		var total time.Duration
		for i, s := range toPresent {
			start := time.Now()
			if _, err := exp.Run(mem, []stimuli.Stimulus{s}); err != nil {
				updates <- tui.DoneMsg{Total: total, Err: err}
				return
			}
			elapsed := time.Since(start)
			total += elapsed

			segments := mem.Recordings(s.ID())
			mean := 0.0
			if len(segments) > 0 {
				for _, seg := range segments {
					mean += analysis.MeanRate(seg)
				}
				mean /= float64(len(segments))
			}
			updates <- tui.TrialUpdate{
				Index:      i + 1,
				Total:      len(toPresent),
				StimulusID: s.ID(),
				MeanRate:   mean,
				Elapsed:    elapsed,
			}
		}
		updates <- tui.DoneMsg{Total: total}
	}()

	p := tea.NewProgram(tui.NewModel(cfg.Name, updates))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logLevel, os.Stderr)

	items := make([]experiment.BatchItem, 0, len(args))
	stores := make([]*datastore.Memory, 0, len(args))
	for _, name := range args {
		cfg, err := loadConfig(cmd, name)
		if err != nil {
			return err
		}
		m, err := buildModel(cfg, logger)
		if err != nil {
			return err
		}
		exp, err := experiment.NewRegistry().Get(name, m, logger, experimentParams(cfg))
		if err != nil {
			return err
		}
		mem := datastore.NewMemory()
		items = append(items, experiment.BatchItem{Experiment: exp, Store: mem})
		stores = append(stores, mem)
	}

	fmt.Printf("running %d experiments with %d workers...\n", len(items), workers)
	times, err := experiment.RunBatch(context.Background(), items, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPERIMENT\tSTIMULI\tTIME")
	for i, name := range args {
		ids, _ := stores[i].StimulusIDs()
		fmt.Fprintf(w, "%s\t%d\t%v\n", name, len(ids), times[i].Round(time.Millisecond))
	}
	return w.Flush()
}
