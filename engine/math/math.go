package math

import (
	"github.com/chewxy/math32"
)

const (
	/** @brief An approximate representation of PI. */
	Pi float32 = math32.Pi
	/** @brief A multiplier used to convert degrees to radians. */
	Deg2RadMultiplier float32 = Pi / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	Rad2DegMultiplier float32 = 180.0 / Pi
	/** @brief Smallest positive number where 1.0 + FloatEpsilon != 1.0 */
	FloatEpsilon float32 = 1.192092896e-07
	/** @brief A huge number that should be larger than any valid number used. */
	Infinity float32 = 1e30
)

func DegToRad(degrees float32) float32 {
	return degrees * Deg2RadMultiplier
}

func RadToDeg(radians float32) float32 {
	return radians * Rad2DegMultiplier
}

func Abs(x float32) float32 {
	return math32.Abs(x)
}

func Sqrt(x float32) float32 {
	return math32.Sqrt(x)
}

func Sin(x float32) float32 {
	return math32.Sin(x)
}

func Cos(x float32) float32 {
	return math32.Cos(x)
}

func Tan(x float32) float32 {
	return math32.Tan(x)
}

func Acos(x float32) float32 {
	return math32.Acos(x)
}

func Floor(x float32) float32 {
	return math32.Floor(x)
}

func Ceil(x float32) float32 {
	return math32.Ceil(x)
}
