package osprite

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/egtoney/osprite/utils"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when pasted or loaded bytes do not hold a supported image.
var ErrDecode = errors.New("unable to decode image")

// supportedExtensions lists the file types the editor can write.
var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// DecodeImage decodes png, jpeg, gif, bmp, tiff or webp data.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// decodeImageFile opens and decodes an image file after sniffing its content type.
func decodeImageFile(src string) (image.Image, error) {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%w: %s is not an image file", ErrDecode, src)
	}

	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the image file: %w", err)
	}
	defer file.Close()

	return DecodeImage(file)
}

// EncodeImage encodes img in the format matching the extension of name.
// An empty extension or a non file writer produces png.
func EncodeImage(w io.Writer, name string, img image.Image) error {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case "", ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case ".bmp":
		return bmp.Encode(w, img)
	case ".gif":
		return imaging.Encode(w, img, imaging.GIF)
	default:
		return fmt.Errorf("%s file type not supported", ext)
	}
}

// ScaleImage enlarges img by an integer factor without smoothing.
func ScaleImage(img image.Image, factor int) *image.NRGBA {
	if factor <= 1 {
		return toNRGBA(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// toNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if src, ok := img.(*image.NRGBA); ok && src.Rect.Min == (image.Point{}) {
		return src
	}
	return imaging.Clone(img)
}
