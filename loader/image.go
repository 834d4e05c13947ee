package loader

import (
	"image"
	"io"

	// decoders for the texture formats the site ships
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes any registered image format into tightly packed
// RGBA. Images with a side longer than maxSize are scaled down keeping
// their aspect ratio, a maxSize of zero disables the limit.
func DecodeImage(r io.Reader, maxSize int) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return ToRGBA(img, maxSize), nil
}

// ToRGBA converts img, see DecodeImage
func ToRGBA(img image.Image, maxSize int) *image.RGBA {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()

	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Rect, img, src, xdraw.Src, nil)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok && src.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Rect, img, src.Min, xdraw.Src)
	return dst
}
