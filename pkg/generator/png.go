// png.go — Image file writers.
package generator

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// writeImage encodes img to a file at the given path.
func writeImage(output string, img image.Image, f imaging.Format, quality int) error {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := encodeTo(out, img, f, quality); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func encodeTo(w io.Writer, img image.Image, f imaging.Format, quality int) error {
	var opts []imaging.EncodeOption
	if f == imaging.JPEG {
		opts = append(opts, imaging.JPEGQuality(quality))
	}
	if err := imaging.Encode(w, img, f, opts...); err != nil {
		return fmt.Errorf("encode %v: %w", f, err)
	}
	return nil
}
