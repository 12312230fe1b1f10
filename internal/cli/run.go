package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pekman/yle-subtitle-dl/internal/capture"
	"github.com/pekman/yle-subtitle-dl/internal/hls"
	"github.com/pekman/yle-subtitle-dl/internal/subtitle"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runCapture(cmd *cobra.Command, args []string) error {
	url := args[0]

	basename, _ := cmd.Flags().GetString("output")
	if len(args) > 1 {
		if basename != "" {
			return fmt.Errorf("output basename given both as argument and with --output")
		}
		basename = args[1]
	}
	if basename == "" {
		return fmt.Errorf("output basename required: pass OUTPUT_BASENAME or use --output")
	}

	startStr, _ := cmd.Flags().GetString("start-time")
	endStr, _ := cmd.Flags().GetString("end-time")
	durStr, _ := cmd.Flags().GetString("duration")
	formatStr, _ := cmd.Flags().GetString("format")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	maxFailures, _ := cmd.Flags().GetInt("max-failures")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var format subtitle.Format
	switch strings.ToLower(formatStr) {
	case "vtt":
		format = subtitle.FormatVTT
	case "srt":
		format = subtitle.FormatSRT
	default:
		return fmt.Errorf("unsupported format %q: use vtt or srt", formatStr)
	}

	start, err := parseTimeFlag(startStr)
	if err != nil {
		return fmt.Errorf("%w: invalid start time %q", capture.ErrWindowConfig, startStr)
	}

	var end time.Time
	switch {
	case durStr != "":
		dur, err := parseDurationFlag(durStr)
		if err != nil {
			return fmt.Errorf("%w: invalid duration %q", capture.ErrWindowConfig, durStr)
		}
		end = start.Add(dur)
	case endStr != "":
		end, err = parseTimeFlag(endStr)
		if err != nil {
			return fmt.Errorf("%w: invalid end time %q", capture.ErrWindowConfig, endStr)
		}
	}
	if !end.IsZero() && !end.After(start) {
		return fmt.Errorf("%w: start %s, end %s",
			capture.ErrWindowConfig,
			start.Format(time.RFC3339),
			end.Format(time.RFC3339))
	}

	fmt.Println("Downloading subtitles from the following time period:")
	fmt.Println("  start:", start.Format(time.RFC3339))
	if end.IsZero() {
		fmt.Println("  end:   until stopped")
	} else {
		fmt.Println("  end:  ", end.Format(time.RFC3339))
		fmt.Println("  duration:", end.Sub(start))
	}
	fmt.Println()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := hls.NewClient(timeout)

	rends, err := hls.ResolveRenditions(ctx, client, url)
	if err != nil {
		return fmt.Errorf("resolve subtitle renditions: %w", err)
	}
	if len(rends) == 0 {
		return fmt.Errorf("no subtitle renditions found in %s", url)
	}

	cfg := capture.Config{
		StartTime:   start,
		EndTime:     end,
		MaxFailures: maxFailures,
		Concurrency: concurrency,
	}

	// open every output before starting any poller, so a failure here
	// never abandons captures already in flight
	type renditionOutput struct {
		rend   hls.Rendition
		writer subtitle.CueWriter
		path   string
	}
	outputs := make([]renditionOutput, 0, len(rends))
	for _, rend := range rends {
		writer, path, err := subtitle.CreateOutput(basename, rend.Suffix, format)
		if err != nil {
			for _, o := range outputs {
				_ = o.writer.Close()
			}
			return fmt.Errorf("create output file: %w", err)
		}
		outputs = append(outputs, renditionOutput{rend: rend, writer: writer, path: path})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, o := range outputs {
		writer, path := o.writer, o.path

		logger.Infow("capturing subtitle rendition",
			"name", o.rend.Name,
			"language", o.rend.Language,
			"url", o.rend.URL,
			"output", path,
		)

		poller := capture.New(client, o.rend.URL, writer, logger, cfg)
		g.Go(func() error {
			defer func() {
				if err := writer.Close(); err != nil {
					logger.Errorw("closing output failed",
						"output", path,
						"error", err,
					)
				}
			}()

			stats, err := poller.Run(gctx)
			if err != nil {
				logger.Errorw("rendition capture failed",
					"output", path,
					"state", poller.State().String(),
					"segments", stats.Segments,
					"cues_written", stats.Cues,
					"error", err,
				)
				return err
			}
			fmt.Printf("%s: %d cues from %d segments\n",
				path, stats.Cues, stats.Segments)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("Done.")
	return nil
}
