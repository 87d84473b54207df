package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ingredient-scanner/cmd/ingredient-scan/ui"
	"ingredient-scanner/internal/app"
	"ingredient-scanner/internal/image"
	"ingredient-scanner/pkg/geometry"
)

type scanOptions struct {
	crop     string
	canvas   string
	mode     string
	allModes bool
	asJSON   bool
	showText bool
	savePath string
}

func newScanCmd(g *globals) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Recognize an ingredient list and report matches",
		Long: `Scan recognizes the text in IMAGE, optionally cropped, and reports the
suspicious and prohibited ingredients it contains.

The crop is given as x,y,width,height. By default it is in image pixels; with
--canvas WxH it is in the coordinates of a display of that size and is
scaled to the image.`,
		Example: `  ingredient-scan scan label.jpg
  ingredient-scan scan label.jpg --crop 120,340,800,260 --mode threshold
  ingredient-scan scan label.jpg --crop 10,20,200,80 --canvas 400x300 --all-modes --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, g, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.crop, "crop", "", "crop rectangle x,y,width,height")
	cmd.Flags().StringVar(&opts.canvas, "canvas", "", "display size WxH the crop refers to (default: image size)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "mild", "processing mode: mild, sharpen, threshold or highres")
	cmd.Flags().BoolVar(&opts.allModes, "all-modes", false, "scan once with every processing mode")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.showText, "text", false, "also print the recognized text")
	cmd.Flags().StringVar(&opts.savePath, "save-processed", "", "write the last processed image to this PNG file")
	return cmd
}

func runScan(cmd *cobra.Command, g *globals, opts *scanOptions, path string) error {
	mode, err := image.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	var crop *geometry.Rect
	if opts.crop != "" {
		r, err := parseRect(opts.crop)
		if err != nil {
			return err
		}
		crop = &r
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := g.runtime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	sess := rt.NewSession()
	if err := sess.LoadImageFile(path); err != nil {
		return err
	}
	if err := sess.SetMode(mode); err != nil {
		return err
	}

	if crop != nil {
		canvas := sess.Original().Size
		if opts.canvas != "" {
			if canvas, err = parseSize(opts.canvas); err != nil {
				return err
			}
		}
		sess.SetCanvasSize(canvas)
		sess.Editor().SetSelection(*crop)
	}

	var results []*app.ScanResult
	if opts.allModes {
		results, err = scanAllModes(ctx, sess, crop != nil)
	} else {
		var res *app.ScanResult
		spin := ui.NewSpinner("Scanning with " + mode.String() + "...")
		spin.Start()
		res, err = firstScan(ctx, sess, crop != nil)
		spin.Stop()
		results = append(results, res)
	}
	if err != nil {
		return err
	}

	if opts.savePath != "" {
		if err := writePNG(opts.savePath, sess); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}
	for _, res := range results {
		ui.PrintResult(out, res, opts.showText)
	}
	return nil
}

func firstScan(ctx context.Context, sess *app.Session, cropped bool) (*app.ScanResult, error) {
	if cropped {
		return sess.ScanSelection(ctx)
	}
	return sess.Scan(ctx)
}

// scanAllModes scans with the current mode and then rescans with each of
// the others in cycle order.
func scanAllModes(ctx context.Context, sess *app.Session, cropped bool) ([]*app.ScanResult, error) {
	modes := image.Modes()
	bar := ui.NewProgressBar(len(modes), sess.Mode().String())
	defer bar.Finish()

	first, err := firstScan(ctx, sess, cropped)
	if err != nil {
		return nil, err
	}
	results := []*app.ScanResult{first}
	bar.Add(1)

	for i := 1; i < len(modes); i++ {
		bar.Describe(sess.Mode().Next().String())
		res, err := sess.Rescan(ctx)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		bar.Add(1)
	}
	return results, nil
}

func writePNG(path string, sess *app.Session) error {
	img := sess.Processed()
	if img == nil {
		return fmt.Errorf("no processed image to save")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := image.EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseRect parses "x,y,width,height".
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("crop %q: want x,y,width,height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = f
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geometry.Rect{}, fmt.Errorf("crop %q: width and height must be positive", s)
	}
	return geometry.NewRect(v[0], v[1], v[2], v[3]), nil
}

// parseSize parses "WxH".
func parseSize(s string) (geometry.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("size %q: want WIDTHxHEIGHT", s)
	}
	fw, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	fh, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	if fw <= 0 || fh <= 0 {
		return geometry.Size{}, fmt.Errorf("size %q: must be positive", s)
	}
	return geometry.NewSize(fw, fh), nil
}
