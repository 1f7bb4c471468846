package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/toolbelt/internal/imgtool"
)

// parseGeometry parses a WxH string like "800x600".
func parseGeometry(geometry string) (width, height int, err error) {
	if _, err := fmt.Sscanf(geometry, "%dx%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("invalid geometry %q (want WxH, e.g. 800x600): %w", geometry, err)
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid geometry %q: dimensions must be positive", geometry)
	}

	return width, height, nil
}

// outputName derives the output file name from the input format and current time.
func outputName(format string, now time.Time) string {
	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}

	return "processed_" + now.Format("20060102_150405") + ext
}

// NewImgCommand builds the img subcommand.
func NewImgCommand() *cobra.Command {
	var (
		geometry  string
		grayscale bool
		filter    string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "img FILE",
		Short: "Resize, filter or grayscale an image",
		Long: heredoc.Doc(`
			img loads an image (png, jpeg, gif, bmp or webp), applies the requested
			transforms in order (resize, grayscale, filter) and saves the result
			into the output directory.
		`),
		Example: heredoc.Doc(`
			toolbelt img --resize 800x600 photo.jpg
			toolbelt img --grayscale --filter sharpen photo.png
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, info, err := imgtool.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Loaded: %s (%dx%d, %s)\n", args[0], info.Width, info.Height, info.Format)

			if geometry != "" {
				width, height, err := parseGeometry(geometry)
				if err != nil {
					return err
				}

				img = imgtool.Resize(img, width, height)

				fmt.Fprintf(out, "Resized: %dx%d\n", width, height)
			}

			if grayscale {
				img = imgtool.Grayscale(img)

				fmt.Fprintln(out, "Grayscale applied")
			}

			if filter != "" {
				allowed := []string{"blur", "sharpen"}
				if !slices.Contains(allowed, filter) {
					return fmt.Errorf("unknown filter %q: must be one of %v", filter, allowed)
				}

				img = imgtool.ApplyFilter(img, filter)

				fmt.Fprintf(out, "Filter applied: %s\n", filter)
			}

			processor := imgtool.NewProcessor(outDir)

			saved, err := processor.Save(img, outputName(info.Format, time.Now()))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Saved: %s\n", saved)

			return nil
		},
	}

	cmd.Flags().StringVarP(&geometry, "resize", "r", "", "Resize to WxH (e.g. 800x600)")
	cmd.Flags().BoolVarP(&grayscale, "grayscale", "g", false, "Convert to grayscale")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Apply a filter: blur or sharpen")
	cmd.Flags().StringVarP(&outDir, "out", "O", "processed", "Output directory")

	return cmd
}
