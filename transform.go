package grove

import "math"

// Matrix is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// Identity is the identity affine matrix.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// ComposeMatrix builds a local matrix from position, rotation (radians) and
// scale. Composition order: Scale -> Rotate -> Translate.
func ComposeMatrix(position Vec2, rotation float64, scale Vec2) Matrix {
	sin, cos := math.Sincos(rotation)
	return Matrix{
		cos * scale.X,
		sin * scale.X,
		-sin * scale.Y,
		cos * scale.Y,
		position.X,
		position.Y,
	}
}

// Mul returns m * o, i.e. o applied first, then m.
func (m Matrix) Mul(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Origin returns where the local origin lands, i.e. the translation column.
func (m Matrix) Origin() Vec2 {
	return Vec2{m[4], m[5]}
}

// Translate returns a pure translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{1, 0, 0, 1, x, y}
}

// Scale returns a pure scale matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// --- Transform property accessors ---

// Position returns the local position.
func (e *Entity) Position() Vec2 { return e.position }

// SetPosition sets the local position and marks the entity dirty.
func (e *Entity) SetPosition(x, y float64) {
	e.position = Vec2{x, y}
	e.dirty = true
}

// Rotation returns the local rotation in radians.
func (e *Entity) Rotation() float64 { return e.rotation }

// SetRotation sets the local rotation (radians) and marks the entity dirty.
func (e *Entity) SetRotation(r float64) {
	e.rotation = r
	e.dirty = true
}

// RotationDegrees returns the local rotation in degrees.
func (e *Entity) RotationDegrees() float64 {
	return e.rotation * 180 / math.Pi
}

// SetRotationDegrees sets the local rotation from degrees.
func (e *Entity) SetRotationDegrees(deg float64) {
	e.SetRotation(deg * math.Pi / 180)
}

// ScaleXY returns the local scale.
func (e *Entity) ScaleXY() Vec2 { return e.scale }

// SetScale sets the local scale and marks the entity dirty.
func (e *Entity) SetScale(sx, sy float64) {
	e.scale = Vec2{sx, sy}
	e.dirty = true
}

// MarkDirty forces recomputation of this entity and its subtree on the next
// transform pass.
func (e *Entity) MarkDirty() {
	e.dirty = true
}

// Dirty reports whether the local transform is pending recomputation.
func (e *Entity) Dirty() bool { return e.dirty }

// Local returns the local matrix computed by the last transform pass.
func (e *Entity) Local() Matrix { return e.local }

// World returns parent-world × local as of the last transform pass.
func (e *Entity) World() Matrix { return e.world }

// InverseWorld returns the inverse of World as of the last transform pass.
func (e *Entity) InverseWorld() Matrix { return e.inverseWorld }

// UpdateTransforms recomputes world matrices for this entity and its subtree.
// An entity is recomputed when it is dirty or when forced; once recomputed,
// every descendant is forced too. Inactive entities and their subtrees are
// left untouched, dirty flags included.
func (e *Entity) UpdateTransforms(parentWorld Matrix, forced bool) {
	if !e.active {
		return
	}
	if e.dirty || forced {
		e.local = ComposeMatrix(e.position, e.rotation, e.scale)
		e.world = parentWorld.Mul(e.local)
		e.inverseWorld = e.world.Invert()
		e.dirty = false
		forced = true
	}
	for _, child := range e.children {
		child.UpdateTransforms(e.world, forced)
	}
}

// LocalToWorld converts a local-space point to world-space.
func (e *Entity) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return e.world.Apply(lx, ly)
}

// WorldToLocal converts a world-space point to this entity's local space.
func (e *Entity) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return e.inverseWorld.Apply(wx, wy)
}
