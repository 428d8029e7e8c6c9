package parameter

// Render Camera
const (
	// CameraFOV is the vertical field of view in degrees
	CameraFOV = 60.0

	// CameraNear/Far clip planes
	CameraNear = 0.01
	CameraFar  = 100.0

	// CameraDistance is how far the simulated anchors sit in front of the camera
	CameraDistance = 4.0

	// CellAspect compensates for terminal cells being roughly twice as tall as wide
	CellAspect = 0.5
)

// Simulated Anchor Layout
const (
	// AnchorColumns is the number of anchors per row on the simulated marker board
	AnchorColumns = 5

	// AnchorSpacingX/Y is the board spacing between neighbouring anchors
	AnchorSpacingX = 1.2
	AnchorSpacingY = 1.0

	// AnchorScale enlarges marker content so a chest spans several terminal rows
	AnchorScale = 2.5
)
