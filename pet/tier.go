package pet

// SizeTier is a named size bracket.
type SizeTier int

const (
	TierBaby SizeTier = iota
	TierChild
	TierTeen
	TierAdult
	TierChubby
	TierFat
	TierHuge
	TierGigantic
)

var tierNames = [...]string{
	TierBaby:     "Baby",
	TierChild:    "Child",
	TierTeen:     "Teen",
	TierAdult:    "Adult",
	TierChubby:   "Chubby",
	TierFat:      "Fat",
	TierHuge:     "Huge",
	TierGigantic: "Gigantic",
}

func (t SizeTier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "Unknown"
	}
	return tierNames[t]
}

// TierFor returns the tier for a size in MB.
func TierFor(sizeMB int) SizeTier {
	switch {
	case sizeMB <= 50:
		return TierBaby
	case sizeMB <= 150:
		return TierChild
	case sizeMB <= 300:
		return TierTeen
	case sizeMB <= 500:
		return TierAdult
	case sizeMB <= 1000:
		return TierChubby
	case sizeMB <= 1500:
		return TierFat
	case sizeMB <= 2000:
		return TierHuge
	default:
		return TierGigantic
	}
}
