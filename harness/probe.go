package harness

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// OutputInfo describes a rendered file as far as its header tells.
type OutputInfo struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// ProbeOutput reads the header of a rendered file. Only the image
// configuration is decoded, never the pixels.
func ProbeOutput(path string) (OutputInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return OutputInfo{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return OutputInfo{}, err
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return OutputInfo{}, fmt.Errorf("decoding header of %s: %w", path, err)
	}
	return OutputInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   st.Size(),
	}, nil
}
