package ocr

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// preprocess prepares a rendered page for recognition: upscale,
// grayscale, contrast normalization, then a light sharpen. The same
// chain runs for every page so recognition quality is uniform.
func preprocess(src image.Image, upscale float64) image.Image {
	if upscale > 1.0 {
		src = resize(src, upscale)
	}
	gray := toGray(src)
	normalize(gray)
	return sharpen(gray)
}

// resize scales the image with Catmull-Rom resampling
func resize(src image.Image, factor float64) image.Image {
	bounds := src.Bounds()
	w := int(float64(bounds.Dx()) * factor)
	h := int(float64(bounds.Dy()) * factor)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func toGray(src image.Image) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)
	return gray
}

// normalize stretches the intensity histogram to the full 0..255 range
func normalize(img *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, p := range img.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if max <= min {
		return
	}

	scale := 255.0 / float64(max-min)
	for i, p := range img.Pix {
		img.Pix[i] = uint8(float64(p-min) * scale)
	}
}

// sharpen applies a 3x3 unsharp kernel
func sharpen(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(bounds)

	// Kernel: center 5, cross -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				out.SetGray(x, y, img.GrayAt(x, y))
				continue
			}
			v := 5*int(img.GrayAt(x, y).Y) -
				int(img.GrayAt(x-1, y).Y) -
				int(img.GrayAt(x+1, y).Y) -
				int(img.GrayAt(x, y-1).Y) -
				int(img.GrayAt(x, y+1).Y)
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}

	return out
}
