package domain

const (
	// BonusTapInterval makes every 11th tap of a player a bonus tap.
	BonusTapInterval = 11
	BonusTapPoints   = 10
	BaseTapPoints    = 1
)

// PointsForTap returns the points awarded for the tap that follows priorTaps
// already recorded taps.
func PointsForTap(priorTaps int64) int64 {
	if (priorTaps+1)%BonusTapInterval == 0 {
		return BonusTapPoints
	}
	return BaseTapPoints
}
