package preview

import (
	"image"
	"image/color"
	"strings"
)

// luminance ramp from dark to bright
const ramp = " .:-=+*#%@"

// Thumbnail renders img as rows of ASCII characters, width columns wide.
// Terminal cells are roughly twice as tall as wide, so each row samples
// two pixel rows worth of height.
func Thumbnail(img image.Image, width int) []string {
	bounds := img.Bounds()
	if width <= 0 || bounds.Empty() {
		return nil
	}
	if width > bounds.Dx() {
		width = bounds.Dx()
	}

	cellW := float64(bounds.Dx()) / float64(width)
	cellH := cellW * 2
	height := int(float64(bounds.Dy()) / cellH)
	if height < 1 {
		height = 1
	}

	rows := make([]string, 0, height)
	var b strings.Builder
	for row := 0; row < height; row++ {
		b.Reset()
		y := bounds.Min.Y + int((float64(row)+0.5)*cellH)
		if y >= bounds.Max.Y {
			y = bounds.Max.Y - 1
		}
		for col := 0; col < width; col++ {
			x := bounds.Min.X + int((float64(col)+0.5)*cellW)
			if x >= bounds.Max.X {
				x = bounds.Max.X - 1
			}
			b.WriteByte(shade(img.At(x, y)))
		}
		rows = append(rows, b.String())
	}
	return rows
}

func shade(c color.Color) byte {
	gray := color.GrayModel.Convert(c).(color.Gray)
	idx := int(gray.Y) * (len(ramp) - 1) / 255
	return ramp[idx]
}
