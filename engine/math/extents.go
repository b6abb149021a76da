package math

/**
 * @brief Represents the extents of a 2d object.
 */
type Extents2D struct {
	/** @brief The minimum extents of the object. */
	Min Vec2
	/** @brief The maximum extents of the object. */
	Max Vec2
}

/**
 * @brief Represents the axis-aligned extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

// NewExtents3DFromPoints builds the smallest extents containing all
// points. Passing no points yields the zero extents.
func NewExtents3DFromPoints(points ...Vec3) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	out := Extents3D{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		out = out.MergePoint(p)
	}
	return out
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

func (e Extents3D) HalfSize() Vec3 {
	return e.Max.Sub(e.Min).MulScalar(0.5)
}

func (e Extents3D) Size() Vec3 {
	return e.Max.Sub(e.Min)
}

func (e Extents3D) MergePoint(p Vec3) Extents3D {
	out := e
	if p.X < out.Min.X {
		out.Min.X = p.X
	}
	if p.Y < out.Min.Y {
		out.Min.Y = p.Y
	}
	if p.Z < out.Min.Z {
		out.Min.Z = p.Z
	}
	if p.X > out.Max.X {
		out.Max.X = p.X
	}
	if p.Y > out.Max.Y {
		out.Max.Y = p.Y
	}
	if p.Z > out.Max.Z {
		out.Max.Z = p.Z
	}
	return out
}

func (e Extents3D) Merge(other Extents3D) Extents3D {
	return e.MergePoint(other.Min).MergePoint(other.Max)
}

// Corners returns the eight corner points of the extents.
func (e Extents3D) Corners() [8]Vec3 {
	return [8]Vec3{
		{X: e.Min.X, Y: e.Min.Y, Z: e.Min.Z},
		{X: e.Max.X, Y: e.Min.Y, Z: e.Min.Z},
		{X: e.Min.X, Y: e.Max.Y, Z: e.Min.Z},
		{X: e.Max.X, Y: e.Max.Y, Z: e.Min.Z},
		{X: e.Min.X, Y: e.Min.Y, Z: e.Max.Z},
		{X: e.Max.X, Y: e.Min.Y, Z: e.Max.Z},
		{X: e.Min.X, Y: e.Max.Y, Z: e.Max.Z},
		{X: e.Max.X, Y: e.Max.Y, Z: e.Max.Z},
	}
}

// Transformed returns the axis-aligned extents of the box after
// transforming all eight corners by m.
func (e Extents3D) Transformed(m Mat4) Extents3D {
	corners := e.Corners()
	out := Extents3D{Min: corners[0].Transform(m), Max: corners[0].Transform(m)}
	for _, c := range corners[1:] {
		out = out.MergePoint(c.Transform(m))
	}
	return out
}
