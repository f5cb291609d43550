package triklops

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ImgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func ImgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	case *image.Gray:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := src.Pix[si]
				dst.Pix[di+0] = c
				dst.Pix[di+1] = c
				dst.Pix[di+2] = c
				dst.Pix[di+3] = 0xff
				di += 4
				si++
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// Resize scales img to exactly size × size pixels, ignoring the aspect ratio,
// and flattens any transparency onto the background color.
func Resize(img image.Image, size int, bg color.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	bg.A = 0xff
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// Grayscale converts the image to grayscale mode.
func Grayscale(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		lum := float32(r)*0.299 + float32(g)*0.587 + float32(b)*0.114
		v := uint8(lum + 0.5)
		dst.Pix[i+0] = v
		dst.Pix[i+1] = v
		dst.Pix[i+2] = v
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// convolutionFilter applies a mathematical operation over the source image by taking
// the matrix table as input parameter and convolving the matrix values over the
// RGB channels. Pixels outside the image are skipped and the divisor is
// reduced accordingly, so edges do not darken.
func convolutionFilter(matrix []float64, img *image.NRGBA) *image.NRGBA {
	var (
		width  = img.Bounds().Dx()
		height = img.Bounds().Dy()
		side   = 0
	)
	for side*side < len(matrix) {
		side++
	}
	dim := side / 2
	dst := image.NewNRGBA(img.Bounds())

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b, weight float64

			for row := -dim; row <= dim; row++ {
				sy := y + row
				if sy < 0 || sy >= height {
					continue
				}
				for col := -dim; col <= dim; col++ {
					sx := x + col
					if sx < 0 || sx >= width {
						continue
					}
					v := matrix[(col+dim)+(row+dim)*side]
					si := img.PixOffset(sx, sy)
					r += float64(img.Pix[si+0]) * v
					g += float64(img.Pix[si+1]) * v
					b += float64(img.Pix[si+2]) * v
					weight += v
				}
			}
			if weight != 0 {
				r, g, b = r/weight, g/weight, b/weight
			}

			di := dst.PixOffset(x, y)
			dst.Pix[di+0] = uint8(Clamp(r+0.5, 0, 255))
			dst.Pix[di+1] = uint8(Clamp(g+0.5, 0, 255))
			dst.Pix[di+2] = uint8(Clamp(b+0.5, 0, 255))
			dst.Pix[di+3] = img.Pix[img.PixOffset(x, y)+3]
		}
	}
	return dst
}

// setBlurMatrix populates a matrix table with values used in conjunction with the convolution filter operator.
func setBlurMatrix(size int) []float64 {
	var (
		side   = size*2 + 1
		length = side * side
		matrix = make([]float64, length)
	)

	for i := 0; i < length; i++ {
		matrix[i] = 1
	}

	return matrix
}
