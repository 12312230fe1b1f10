package cli

import (
	"time"

	"github.com/pekman/yle-subtitle-dl/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "yle-subtitle-dl [flags] URL [OUTPUT_BASENAME]",
	Short: "Download subtitles from a live HLS stream",
	Long: `yle-subtitle-dl continuously downloads the subtitle renditions of a live
HLS stream and saves each as a single subtitle file, so they can later be
synced manually with a separately captured video.

URL is the stream's HLS playlist (e.g. the output of 'yle-dl --showurl');
either a master playlist, from which every subtitle rendition is captured,
or a single subtitle media playlist. OUTPUT_BASENAME may contain a path but
should not have an extension; subtitles are saved with names like
'output_basename-fi.vtt'.

Note: it's possible to set the start time some hours in the past and
download subtitles from that time. Old subtitles remain on the server for
some time.`,
	Args: cobra.RangeArgs(1, 2),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
	RunE:          runCapture,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && logger != nil {
		logger.Errorw("capture failed", "error", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Flags().
		StringP("start-time", "s", "", `Capture no subtitles older than this; also the zero point of saved subtitle time values (default "now")`)
	rootCmd.Flags().
		StringP("end-time", "e", "", "Stop capturing at this time")
	rootCmd.Flags().
		StringP("duration", "d", "", `How long to capture, e.g. "1h30m", "01:30:00", or "90" (seconds)`)
	rootCmd.Flags().
		StringP("format", "f", "vtt", "Output subtitle format (vtt, srt)")
	rootCmd.Flags().
		StringP("output", "o", "", "Output basename (overrides the OUTPUT_BASENAME argument)")
	rootCmd.Flags().
		Int("concurrency", 3, "Parallel segment downloads per playlist reload")
	rootCmd.Flags().
		Int("max-failures", 5, "Consecutive playlist failures tolerated before giving up")
	rootCmd.Flags().
		Duration("timeout", 20*time.Second, "HTTP request timeout")

	rootCmd.MarkFlagsMutuallyExclusive("end-time", "duration")
}
