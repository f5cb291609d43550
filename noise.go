package triklops

import (
	"image"
)

// prng is a Park-Miller minimal standard generator. The grain it produces
// is the same on every run, so exported images are reproducible.
type prng struct {
	a         int
	m         int
	randomNum int
	div       float64
}

func newPrng() *prng {
	return &prng{
		a:         16807,
		m:         0x7fffffff,
		randomNum: 1,
		div:       1.0 / 0x7fffffff,
	}
}

// Noise applies a grain filter of the given amount to the image, like
// adobe's grain filter. The source is left untouched.
func Noise(amount int, src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	if amount <= 0 {
		return dst
	}

	rng := newPrng()
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			noise := (rng.randomSeed() - 0.1) * float64(amount)
			i := dst.PixOffset(x, y)
			rf, gf, bf := float64(dst.Pix[i]), float64(dst.Pix[i+1]), float64(dst.Pix[i+2])
			// Keep the pixel unchanged if any channel would overflow.
			if Max(rf+noise, gf+noise, bf+noise) < 255 && Min(rf+noise, gf+noise, bf+noise) >= 0 {
				dst.Pix[i+0] = uint8(rf + noise)
				dst.Pix[i+1] = uint8(gf + noise)
				dst.Pix[i+2] = uint8(bf + noise)
			}
		}
	}
	return dst
}

// NoiseFilter wraps Noise as a Filter.
func NoiseFilter(amount int) Filter {
	return FilterFunc(func(src *image.NRGBA) *image.NRGBA {
		return Noise(amount, src)
	})
}

func (prng *prng) nextLongRand(seed int) int {
	lo := prng.a * (seed & 0xffff)
	hi := prng.a * (seed >> 16)
	lo += (hi & 0x7fff) << 16

	if lo > prng.m {
		lo &= prng.m
		lo++
	}
	lo += hi >> 15
	if lo > prng.m {
		lo &= prng.m
		lo++
	}
	return lo
}

func (prng *prng) randomSeed() float64 {
	prng.randomNum = prng.nextLongRand(prng.randomNum)
	return float64(prng.randomNum) * prng.div
}
