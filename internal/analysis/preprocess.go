package analysis

import (
	"image"
	"math"

	// Registered decoders for the ONNX executor
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageNet channel statistics
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// Preprocess resizes img to size x size with nearest-neighbour sampling
// and returns normalized pixels in CHW order.
func Preprocess(img image.Image, size int) []float32 {
	bounds := img.Bounds()
	plane := size * size
	out := make([]float32, 3*plane)
	if bounds.Empty() || size <= 0 {
		return out
	}

	for y := 0; y < size; y++ {
		sy := bounds.Min.Y + y*bounds.Dy()/size
		for x := 0; x < size; x++ {
			sx := bounds.Min.X + x*bounds.Dx()/size
			r, g, b, _ := img.At(sx, sy).RGBA()
			rgb := [3]float32{
				float32(r) / 65535,
				float32(g) / 65535,
				float32(b) / 65535,
			}
			for c := 0; c < 3; c++ {
				out[c*plane+y*size+x] = (rgb[c] - channelMean[c]) / channelStd[c]
			}
		}
	}
	return out
}

// Softmax converts logits into probabilities
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	peak := math.Inf(-1)
	for _, l := range logits {
		peak = math.Max(peak, float64(l))
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - peak)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Scores maps class probabilities onto the 0-100 scale. Risk is the
// positive class probability; confidence is the winning class probability.
func Scores(probs []float64) (risk, confidence float64) {
	if len(probs) < 2 {
		return 0, 0
	}
	risk = probs[1] * 100
	for _, p := range probs {
		confidence = math.Max(confidence, p*100)
	}
	return risk, confidence
}
