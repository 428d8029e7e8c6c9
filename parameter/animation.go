package parameter

import (
	"math"
	"time"
)

// Treasure Chest Lid
const (
	// LidOpenDuration is the lid opening time (ease-out-cubic)
	LidOpenDuration = 3000 * time.Millisecond

	// LidOpenAngle is the lid rotation around X when fully open (126 degrees)
	LidOpenAngle = -math.Pi * 0.7

	// LidCloseDuration is the linear lid closing time
	LidCloseDuration = 1500 * time.Millisecond

	// TreasureRevealProgress is the opening progress at which treasure and particles appear
	TreasureRevealProgress = 0.5

	// TreasureHideProgress is the closing progress at which treasure and particles disappear
	TreasureHideProgress = 0.7
)

// Clue Arrow
const (
	// ArrowSpinDuration is the arrow spin time (ease-out-exponential)
	ArrowSpinDuration = 3500 * time.Millisecond

	// ArrowSpinTurns is the number of full turns added before the final angle
	ArrowSpinTurns = 6
)

// Fallback Primitive
const (
	// FallbackRevealDuration is the spin-in time of the fallback cube
	FallbackRevealDuration = 1200 * time.Millisecond
)

// Treasure Shimmer
const (
	// CoinSpinBase is the base coin spin rate (rad/s), each coin adds CoinSpinStep*index
	CoinSpinBase = 0.5
	CoinSpinStep = 0.1

	// BarSpinRate is the gold bar spin rate (rad/s)
	BarSpinRate = 0.3

	// CoinShimmerRate/BarShimmerRate are the emissive oscillation rates (rad/s)
	CoinShimmerRate = 4.0
	BarShimmerRate  = 3.0

	// CoinEmissive/BarEmissive are the shimmer base levels, swinging by the matching Swing
	CoinEmissive      = 0.08
	CoinEmissiveSwing = 0.02
	BarEmissive       = 0.05
	BarEmissiveSwing  = 0.02
)
