// Package swap implements the command-line face-swap client.
package swap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	entrypoint "github.com/louisbranch/cultface/internal/platform/cmd"
	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
	"github.com/louisbranch/cultface/internal/services/faceswap"
	"github.com/louisbranch/cultface/internal/swapclient"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Version is the CLI version.
const Version = "0.1.0"

// Config holds the environment defaults for the swap CLI.
type Config struct {
	ServerURL string `env:"CULTFACE_SERVER_URL" envDefault:"http://localhost:8080"`
}

// Options holds the flags of one swap invocation.
type Options struct {
	ServerURL  string
	ImagePath  string
	SceneID    string
	VideoURL   string
	OutputPath string
	Quiet      bool

	PixelBoost        string
	FaceSelectorMode  string
	FaceSelectorOrder string
	AgeStart          int
	AgeEnd            int
	FaceDistance      float64
	FrameNumber       int
}

// NewCommand builds the root command.
func NewCommand(cfg Config) *cobra.Command {
	opts := Options{ServerURL: cfg.ServerURL}
	scenes := catalog.DefaultCatalog()

	root := &cobra.Command{
		Use:           "swap",
		Short:         "Swap your face into a movie scene",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(cmd, opts, scenes)
			if err != nil {
				return err
			}
			return runSwap(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, req)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.Flags()
	root.PersistentFlags().StringVar(&opts.ServerURL, "server", opts.ServerURL, "CULTFACE server URL")
	flags.StringVarP(&opts.ImagePath, "image", "i", "", "portrait photo to swap in")
	flags.StringVarP(&opts.SceneID, "scene", "s", "", "scene id from the catalog (see 'swap scenes')")
	flags.StringVar(&opts.VideoURL, "video-url", "", "custom target video URL")
	flags.StringVarP(&opts.OutputPath, "out", "o", "cultface.mp4", "where to write the resulting video")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "hide the progress spinner")
	flags.StringVar(&opts.PixelBoost, "pixel-boost", faceswap.DefaultPixelBoost, "provider pixel boost")
	flags.StringVar(&opts.FaceSelectorMode, "face-selector-mode", faceswap.DefaultFaceSelectorMode, "provider face selector mode")
	flags.StringVar(&opts.FaceSelectorOrder, "face-selector-order", faceswap.DefaultFaceSelectorOrder, "provider face selector order")
	flags.IntVar(&opts.AgeStart, "age-start", faceswap.DefaultAgeStart, "youngest face age to replace")
	flags.IntVar(&opts.AgeEnd, "age-end", faceswap.DefaultAgeEnd, "oldest face age to replace")
	flags.Float64Var(&opts.FaceDistance, "face-distance", faceswap.DefaultFaceDistance, "reference face distance")
	flags.IntVar(&opts.FrameNumber, "frame-number", faceswap.DefaultFrameNumber, "reference frame number")
	_ = root.MarkFlagRequired("image")
	root.MarkFlagsMutuallyExclusive("scene", "video-url")

	root.AddCommand(newScenesCommand(scenes))
	return root
}

func newScenesCommand(scenes *catalog.Catalog) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the scenes available for swapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printScenes(cmd.OutOrStdout(), scenes.Scenes())
		},
	}
}

func printScenes(w io.Writer, scenes []catalog.Scene) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tACTOR")
	for _, scene := range scenes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", scene.ID, scene.Title, scene.Actor)
	}
	return tw.Flush()
}

// buildRequest turns flags into a swap request. Tuning fields are sent only
// when set explicitly so the server's defaults stay authoritative.
func buildRequest(cmd *cobra.Command, opts Options, scenes *catalog.Catalog) (faceswap.SwapRequest, error) {
	videoURL := strings.TrimSpace(opts.VideoURL)
	if videoURL == "" {
		sceneID := opts.SceneID
		var scene catalog.Scene
		var err error
		if strings.TrimSpace(sceneID) == "" {
			var ok bool
			scene, ok = scenes.Default()
			if !ok {
				return faceswap.SwapRequest{}, errors.New("no scene selected")
			}
		} else if scene, err = scenes.Lookup(sceneID); err != nil {
			return faceswap.SwapRequest{}, err
		}
		videoURL = scene.VideoURL
	}

	f, err := os.Open(opts.ImagePath)
	if err != nil {
		return faceswap.SwapRequest{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	encoded, err := swapclient.EncodeImage(f)
	if err != nil {
		return faceswap.SwapRequest{}, err
	}

	req := faceswap.SwapRequest{SourceBase64: encoded, VideoURL: videoURL}
	flags := cmd.Flags()
	if flags.Changed("pixel-boost") {
		req.PixelBoost = &opts.PixelBoost
	}
	if flags.Changed("face-selector-mode") {
		req.FaceSelectorMode = &opts.FaceSelectorMode
	}
	if flags.Changed("face-selector-order") {
		req.FaceSelectorOrder = &opts.FaceSelectorOrder
	}
	if flags.Changed("age-start") {
		req.AgeStart = &opts.AgeStart
	}
	if flags.Changed("age-end") {
		req.AgeEnd = &opts.AgeEnd
	}
	if flags.Changed("face-distance") {
		req.FaceDistance = &opts.FaceDistance
	}
	if flags.Changed("frame-number") {
		req.FrameNumber = &opts.FrameNumber
	}
	return req, nil
}

func runSwap(ctx context.Context, stdout io.Writer, stderr io.Writer, opts Options, req faceswap.SwapRequest) error {
	client, err := swapclient.New(opts.ServerURL, nil)
	if err != nil {
		return err
	}

	stopSpinner := startSpinner(stderr, opts.Quiet)
	res, err := client.Swap(ctx, req)
	stopSpinner()
	if err != nil {
		return err
	}

	switch res.Kind {
	case swapclient.KindVideo:
		err := writeOutput(opts.OutputPath, func(w io.Writer) error {
			_, err := w.Write(res.Video)
			return err
		})
		if err != nil {
			return fmt.Errorf("write video: %w", err)
		}
		fmt.Fprintf(stdout, "saved %s (%d bytes)\n", opts.OutputPath, len(res.Video))
		return nil
	case swapclient.KindDemo:
		fmt.Fprintf(stdout, "provider is busy, showing the demo instead: %s\n", res.DemoURL)
		var n int64
		err := writeOutput(opts.OutputPath, func(w io.Writer) error {
			var err error
			n, err = client.Download(ctx, res.DemoURL, w)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "saved demo %s (%d bytes)\n", opts.OutputPath, n)
		return nil
	default:
		return fmt.Errorf("face swap failed (status %d): %s", res.Status, res.Message)
	}
}

// writeOutput fills a temp file next to path and renames it into place, so a
// failed write never leaves a partial video behind.
func writeOutput(path string, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cultface-*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// startSpinner animates an indeterminate progress bar until the returned
// func is called.
func startSpinner(w io.Writer, quiet bool) func() {
	if quiet {
		return func() {}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("swapping face"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
		_ = bar.Finish()
	}
}

// Execute runs the CLI with signal-aware cancellation.
func Execute(args []string) error {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewCommand(cfg)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
