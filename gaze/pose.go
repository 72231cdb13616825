package gaze

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose is a rigid transform of a child frame relative to its parent frame.
// X, Y and Z are the child's basis axes expressed in the parent frame (rotation columns),
// T is the child's origin expressed in the parent frame (translation column).
type Pose struct {
	X r3.Vector
	Y r3.Vector
	Z r3.Vector
	T r3.Vector
}

// IdentityPose returns transform which does nothing
func IdentityPose() Pose {
	return Pose{
		X: r3.Vector{X: 1},
		Y: r3.Vector{Y: 1},
		Z: r3.Vector{Z: 1},
	}
}

// NewPose creates pose from its basis axes and translation
func NewPose(x, y, z, t r3.Vector) Pose {
	return Pose{X: x, Y: y, Z: z, T: t}
}

// TranslationPose creates pose without rotation
func TranslationPose(t r3.Vector) Pose {
	pose := IdentityPose()
	pose.T = t
	return pose
}

// RotationPose creates pose rotating by angle (radians) around given axis (right-hand rule).
// Zero axis gives identity
func RotationPose(axis r3.Vector, angle float64) Pose {
	if axis.Norm2() == 0 {
		return IdentityPose()
	}
	u := axis.Normalize()
	c := math.Cos(angle)
	s := math.Sin(angle)
	k := 1 - c
	// Rodrigues' rotation formula, written per column
	return Pose{
		X: r3.Vector{X: c + u.X*u.X*k, Y: u.Y*u.X*k + u.Z*s, Z: u.Z*u.X*k - u.Y*s},
		Y: r3.Vector{X: u.X*u.Y*k - u.Z*s, Y: c + u.Y*u.Y*k, Z: u.Z*u.Y*k + u.X*s},
		Z: r3.Vector{X: u.X*u.Z*k + u.Y*s, Y: u.Y*u.Z*k - u.X*s, Z: c + u.Z*u.Z*k},
	}
}

// PoseFromMatrix builds pose from 4x4 homogeneous matrix stored column-major:
// m[0:4] is the first column, m[12:16] is the translation column.
// This is the layout face trackers deliver transforms in.
func PoseFromMatrix(m [16]float64) Pose {
	return Pose{
		X: r3.Vector{X: m[0], Y: m[1], Z: m[2]},
		Y: r3.Vector{X: m[4], Y: m[5], Z: m[6]},
		Z: r3.Vector{X: m[8], Y: m[9], Z: m[10]},
		T: r3.Vector{X: m[12], Y: m[13], Z: m[14]},
	}
}

// Matrix returns column-major 4x4 homogeneous matrix (inverse of PoseFromMatrix)
func (pose Pose) Matrix() [16]float64 {
	return [16]float64{
		pose.X.X, pose.X.Y, pose.X.Z, 0,
		pose.Y.X, pose.Y.Y, pose.Y.Z, 0,
		pose.Z.X, pose.Z.Y, pose.Z.Z, 0,
		pose.T.X, pose.T.Y, pose.T.Z, 1,
	}
}

// ApplyVector rotates direction from child frame into parent frame. Translation is ignored.
func (pose Pose) ApplyVector(v r3.Vector) r3.Vector {
	return pose.X.Mul(v.X).Add(pose.Y.Mul(v.Y)).Add(pose.Z.Mul(v.Z))
}

// ApplyPoint moves point from child frame into parent frame
func (pose Pose) ApplyPoint(p r3.Vector) r3.Vector {
	return pose.ApplyVector(p).Add(pose.T)
}

// ToLocal moves point from parent frame into child frame
func (pose Pose) ToLocal(p r3.Vector) r3.Vector {
	return pose.Invert().ApplyPoint(p)
}

// Compose returns parent * child: transform of child's frame expressed in parent's parent frame
func Compose(parent, child Pose) Pose {
	return Pose{
		X: parent.ApplyVector(child.X),
		Y: parent.ApplyVector(child.Y),
		Z: parent.ApplyVector(child.Z),
		T: parent.ApplyPoint(child.T),
	}
}

// Invert returns inverse of rigid transform: [R^T | -R^T * t].
// Pose must be orthonormal, see IsRigid
func (pose Pose) Invert() Pose {
	inv := Pose{
		X: r3.Vector{X: pose.X.X, Y: pose.Y.X, Z: pose.Z.X},
		Y: r3.Vector{X: pose.X.Y, Y: pose.Y.Y, Z: pose.Z.Y},
		Z: r3.Vector{X: pose.X.Z, Y: pose.Y.Z, Z: pose.Z.Z},
	}
	inv.T = inv.ApplyVector(pose.T).Mul(-1)
	return inv
}

// Forward returns local forward axis (Z column)
func (pose Pose) Forward() r3.Vector {
	return pose.Z
}

// Position returns frame origin (translation column)
func (pose Pose) Position() r3.Vector {
	return pose.T
}

// IsRigid checks that rotation part is orthonormal with determinant +1 (no scale, shear or reflection)
func (pose Pose) IsRigid(tol float64) bool {
	axes := [3]r3.Vector{pose.X, pose.Y, pose.Z}
	for i := range axes {
		if math.Abs(axes[i].Norm2()-1) > tol {
			return false
		}
		for j := i + 1; j < len(axes); j++ {
			if math.Abs(axes[i].Dot(axes[j])) > tol {
				return false
			}
		}
	}
	det := pose.X.Dot(pose.Y.Cross(pose.Z))
	return math.Abs(det-1) <= tol
}

// ApproxEqual compares every column of two poses component-wise
func (pose Pose) ApproxEqual(other Pose, tol float64) bool {
	return approxEqualVector(pose.X, other.X, tol) &&
		approxEqualVector(pose.Y, other.Y, tol) &&
		approxEqualVector(pose.Z, other.Z, tol) &&
		approxEqualVector(pose.T, other.T, tol)
}

// EulerAngles returns roll, pitch and yaw of the pose in degrees.
// The columns are read as rows r1 (X), r2 (Y), r3 (Z), which is how exported
// face transforms are flattened for analysis.
// Gimbal lock (pitch = ±90°) pins yaw to zero.
func (pose Pose) EulerAngles() (roll, pitch, yaw float64) {
	r11, r12 := pose.X.X, pose.X.Y
	r21 := pose.Y.X
	r22 := pose.Y.Y
	r31, r32, r33 := pose.Z.X, pose.Z.Y, pose.Z.Z

	pitch = math.Atan2(-r31, math.Sqrt(r32*r32+r33*r33))
	switch {
	case math.Abs(pitch-math.Pi/2) < 1e-8:
		yaw = 0
		roll = math.Atan2(r12, r22)
	case math.Abs(pitch+math.Pi/2) < 1e-8:
		yaw = 0
		roll = -math.Atan2(r12, r22)
	default:
		yaw = math.Atan2(r21, r11)
		roll = math.Atan2(r32, r33)
	}
	return toDegrees(roll), toDegrees(pitch), toDegrees(yaw)
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
