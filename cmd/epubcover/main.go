package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/epubcover/internal/converter"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epubcover <input.epub>",
		Short: "Insert a cover/title page into an EPUB",
		Long: `epubcover locates the cover image of an EPUB (or renders a placeholder
for books without one), wraps it in a title page and splices that page
into the book so it opens first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}

			log.Printf("Inserting cover page: %s -> %s", opts.InputPath, opts.OutputPath)

			p := converter.NewPipeline(opts)
			if err := p.Run(); err != nil {
				return fmt.Errorf("cover insertion failed: %w", err)
			}

			log.Printf("Done: %s", opts.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: input with .cover.epub extension)")
	cmd.Flags().Bool("no-default-cover", false, "Do not synthesize a placeholder cover for books without one")
	cmd.Flags().Bool("no-svg-cover", false, "Generate a plain <img> title page instead of the SVG wrapper")
	cmd.Flags().Bool("preserve-aspect-ratio", false, "Preserve the cover image aspect ratio when scaling")
	cmd.Flags().String("width", "", "Fixed CSS width for the plain-image title page (e.g. 600px)")
	cmd.Flags().String("height", "", "Fixed CSS height for the plain-image title page (e.g. 100%)")

	return cmd
}

func readCLIOptions(cmd *cobra.Command, args []string) (converter.ConvertOptions, error) {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".cover.epub"
	}

	noDefaultCover, _ := cmd.Flags().GetBool("no-default-cover")
	noSVGCover, _ := cmd.Flags().GetBool("no-svg-cover")
	preserveAspectRatio, _ := cmd.Flags().GetBool("preserve-aspect-ratio")
	width, _ := cmd.Flags().GetString("width")
	height, _ := cmd.Flags().GetString("height")

	return converter.ConvertOptions{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Cover: converter.Options{
			NoDefaultCover:      noDefaultCover,
			NoSVGCover:          noSVGCover,
			PreserveAspectRatio: preserveAspectRatio,
			FixedWidth:          width,
			FixedHeight:         height,
		},
	}, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
