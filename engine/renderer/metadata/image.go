package metadata

import "image"

/**
 * @brief A structure to hold image resource data.
 */
type ImageResourceData struct {
	/** @brief The number of channels. */
	ChannelCount uint8
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The pixel data of the image, interleaved per channel. */
	Pixels []uint8
}

/** @brief Parameters used when loading an image. */
type ImageResourceParams struct {
	/** @brief Indicates if the image should be flipped on the y-axis when loaded. */
	FlipY bool
}

// RGBA converts the pixel data to a standard RGBA image. Three channel
// data is expanded with an opaque alpha.
func (d *ImageResourceData) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, int(d.Width), int(d.Height)))
	if d.ChannelCount == 4 {
		copy(out.Pix, d.Pixels)
		return out
	}
	channels := int(d.ChannelCount)
	count := int(d.Width) * int(d.Height)
	for i := 0; i < count; i++ {
		src := i * channels
		dst := i * 4
		for c := 0; c < channels && c < 4; c++ {
			out.Pix[dst+c] = d.Pixels[src+c]
		}
		if channels < 4 {
			out.Pix[dst+3] = 255
		}
	}
	return out
}
