package triklops

import "image"

const (
	ssimWindow = 8
	ssimStride = 4
)

// Standard SSIM stabilization constants for 8 bit channels.
var (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// windowStarts lists the offsets of the sliding windows along one axis.
// The last window is shifted so the far edge is always covered.
func windowStarts(n, win, stride int) []int {
	if n <= win {
		return []int{0}
	}
	var starts []int
	for s := 0; s+win <= n; s += stride {
		starts = append(starts, s)
	}
	if last := starts[len(starts)-1]; last+win < n {
		starts = append(starts, n-win)
	}
	return starts
}

// ssim returns the mean structural similarity of the RGB channels of two
// equally sized images, averaged over all windows and channels.
func ssim(img, ref *image.NRGBA) float64 {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	xs := windowStarts(width, ssimWindow, ssimStride)
	ys := windowStarts(height, ssimWindow, ssimStride)
	ww := Min(width, ssimWindow)
	wh := Min(height, ssimWindow)

	var total float64
	for _, y0 := range ys {
		for _, x0 := range xs {
			for c := 0; c < 3; c++ {
				total += windowSSIM(img, ref, x0, y0, ww, wh, c)
			}
		}
	}
	return total / float64(len(xs)*len(ys)*3)
}

func windowSSIM(img, ref *image.NRGBA, x0, y0, w, h, c int) float64 {
	var sx, sy, sxx, syy, sxy float64

	for y := y0; y < y0+h; y++ {
		i := img.PixOffset(x0, y) + c
		j := ref.PixOffset(x0, y) + c
		for x := 0; x < w; x, i, j = x+1, i+4, j+4 {
			a := float64(img.Pix[i])
			b := float64(ref.Pix[j])
			sx += a
			sy += b
			sxx += a * a
			syy += b * b
			sxy += a * b
		}
	}
	n := float64(w * h)
	mx, my := sx/n, sy/n
	vx := sxx/n - mx*mx
	vy := syy/n - my*my
	cov := sxy/n - mx*my

	num := (2*mx*my + ssimC1) * (2*cov + ssimC2)
	den := (mx*mx + my*my + ssimC1) * (vx + vy + ssimC2)
	return num / den
}
