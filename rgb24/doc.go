// Package rgb24 provides a 24-bit RGB color and a packed image type for LED
// matrix frame buffers.
//
// Pixels are stored as three consecutive bytes in R, G, B order, rows top to
// bottom. This is the layout most matrix controllers shift out per row, so a
// row of an Image can be sent to hardware without conversion.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0              1
//	Values: {255, 0, 0}    {0, 16, 32}
//	Bytes:  FF 00 00       00 10 20
//
// This package provides:
//
// - RGB24: a color type with 8 bits per channel
// - Model: a color model converting standard Go colors to RGB24
// - Image: a draw.Image implementation backed by packed RGB bytes
// - Parse: "#rrggbb" parsing for configuration files
//
// Example usage:
//
//	// Create a 32x16 background
//	img := rgb24.NewImage(image.Rect(0, 0, 32, 16))
//
//	// Paint one pixel orange
//	img.SetRGB24(3, 4, rgb24.RGB24{R: 0xFF, G: 0x80})
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
package rgb24
