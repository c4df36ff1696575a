package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/cpumon/internal/archive"
	"codeberg.org/mutker/cpumon/internal/chart"
	"codeberg.org/mutker/cpumon/internal/config"
	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"codeberg.org/mutker/cpumon/internal/telemetry"
	"codeberg.org/mutker/cpumon/internal/termplot"
	"github.com/spf13/pflag"
)

var defaultColumns = []string{telemetry.Temperature.String(), telemetry.Usage.String()}

func plotFlags(fs *pflag.FlagSet) {
	fs.StringSlice("series", defaultColumns, "Columns to plot (temperature, cpu_usage, power_draw)")
	fs.String("x", telemetry.Timestamp.String(), "Column for the x axis (timestamp, index, ...)")
	fs.Bool("plain", false, "Print without colours")
}

func renderFlags(fs *pflag.FlagSet) {
	plotFlags(fs)
	fs.String("file", "", "Daily log to plot (default today's log in --log-dir)")
}

func historyFlags(fs *pflag.FlagSet) {
	plotFlags(fs)
	fs.Duration("since", time.Hour, "How far back to query")
	fs.String("until", "", "End of the range as RFC 3339 (default now)")
}

type plotOptions struct {
	x      telemetry.Column
	series []telemetry.Column
	plain  bool
}

func parsePlotOptions(fs *pflag.FlagSet) (plotOptions, error) {
	errFactory := errors.New()

	names, err := fs.GetStringSlice("series")
	if err != nil {
		return plotOptions{}, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	xName, err := fs.GetString("x")
	if err != nil {
		return plotOptions{}, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}
	plain, err := fs.GetBool("plain")
	if err != nil {
		return plotOptions{}, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	opts := plotOptions{plain: plain}
	var ok bool
	if opts.x, ok = telemetry.ParseColumn(xName); !ok {
		return plotOptions{}, errFactory.WithData(errors.ErrInvalidArgument, xName)
	}
	for _, name := range names {
		c, ok := telemetry.ParseColumn(name)
		if !ok {
			return plotOptions{}, errFactory.WithData(errors.ErrInvalidArgument, name)
		}
		opts.series = append(opts.series, c)
	}

	return opts, nil
}

func runRender(_ context.Context, cfg *config.Config, fs *pflag.FlagSet) error {
	opts, err := parsePlotOptions(fs)
	if err != nil {
		return err
	}

	path, _ := fs.GetString("file")
	if path == "" {
		path = filepath.Join(cfg.LogDir, telemetry.FileName(time.Now()))
	}

	records, err := telemetry.ReadLogFile(path)
	if err != nil {
		if !errors.HasCode(err, telemetry.ErrRecordFormat) {
			return err
		}
		logger.Warn().Err(err).Str("path", path).Msg("Skipped malformed rows")
	}

	fmt.Fprintln(os.Stdout, plot(records, opts, cfg, filepath.Base(path)))
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error {
	errFactory := errors.New()

	opts, err := parsePlotOptions(fs)
	if err != nil {
		return err
	}

	until := time.Now()
	if s, _ := fs.GetString("until"); s != "" {
		if until, err = time.Parse(time.RFC3339, s); err != nil {
			return errFactory.Wrap(errors.ErrInvalidArgument, err)
		}
	}
	since, _ := fs.GetDuration("since")

	arch, err := archive.New(archiveConfig(cfg, true), logger.Default())
	if err != nil {
		return err
	}
	defer arch.Close()

	records, err := arch.Query(ctx, until.Add(-since), until)
	if err != nil {
		return err
	}

	logger.Debug().Int("samples", len(records)).Msg("Queried archive")
	title := fmt.Sprintf("%s to %s", until.Add(-since).Format(time.RFC3339), until.Format(time.RFC3339))
	fmt.Fprintln(os.Stdout, plot(records, opts, cfg, title))
	return nil
}

func runImport(ctx context.Context, cfg *config.Config, _ *pflag.FlagSet) error {
	arch, err := archive.New(archiveConfig(cfg, true), logger.Default())
	if err != nil {
		return err
	}

	stats, importErr := archive.Import(ctx, arch, cfg.LogDir, logger.Default())
	if err := arch.Close(); err != nil {
		return errors.Join(importErr, err)
	}
	if importErr != nil {
		return importErr
	}

	logger.Info().
		Int("files", stats.Files).
		Int("rows", stats.Rows).
		Int("inserted", stats.Inserted).
		Int("malformed", stats.Malformed).
		Msg("Import finished")
	return nil
}

// plot renders records as one series per selected column.
func plot(records []telemetry.SampleRecord, opts plotOptions, cfg *config.Config, title string) string {
	ch := chart.New()
	ch.SetXLabel(axisLabel(opts.x, title))
	ch.SetYLabel(valueLabel(opts.series))
	if opts.x == telemetry.Timestamp {
		ch.SetXUnit("s")
	}

	unit := cfg.TemperatureUnit
	if len(records) > 0 && records[0].Unit != "" {
		unit = records[0].Unit
	}

	if len(records) > 0 {
		for i, c := range opts.series {
			ch.AddSeries(telemetry.SeriesFrom(records, opts.x, c, seriesLabel(c, unit), ch.Config().PaletteColor(i)))
		}
	}

	canvas := termplot.New(cfg.Width, cfg.Height)
	canvas.DrawChart(ch)
	if opts.plain {
		return canvas.Plain()
	}
	return canvas.Render()
}

func axisLabel(c telemetry.Column, title string) string {
	switch c {
	case telemetry.Timestamp:
		return "Time, " + title
	case telemetry.RowIndex:
		return "Sample, " + title
	default:
		return c.String() + ", " + title
	}
}

func valueLabel(cols []telemetry.Column) string {
	if len(cols) == 1 {
		return cols[0].String()
	}
	return "Value"
}

// seriesLabel is kept short to fit the legend column of a terminal chart.
func seriesLabel(c telemetry.Column, unit string) string {
	switch c {
	case telemetry.Temperature:
		return "Temp (" + unitSymbol(unit) + ")"
	case telemetry.Usage:
		return "CPU (%)"
	case telemetry.PowerDraw:
		return "Power (W)"
	default:
		return c.String()
	}
}

func unitSymbol(unit string) string {
	switch strings.ToLower(unit) {
	case "celsius":
		return "°C"
	case "fahrenheit":
		return "°F"
	case "kelvin":
		return "K"
	default:
		return unit
	}
}
