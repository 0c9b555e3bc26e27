package pet

import "math/rand"

// FoodPreference decides what the pet's favorite meal size looks like.
type FoodPreference string

const (
	PreferSmallFrequent FoodPreference = "small_frequent"
	PreferBinge         FoodPreference = "binge"
	PreferGourmet       FoodPreference = "gourmet"
	PreferChaotic       FoodPreference = "chaotic"
)

var preferences = []FoodPreference{PreferSmallFrequent, PreferBinge, PreferGourmet, PreferChaotic}

// gourmetSizes are the only portions a gourmet accepts.
var gourmetSizes = []int{42, 69, 100, 128, 256, 314, 420}

// RandomPreference picks a preference uniformly.
func RandomPreference(rng *rand.Rand) FoodPreference {
	return preferences[rng.Intn(len(preferences))]
}

// FavoriteSize returns a favorite portion in MB for the preference.
func (p FoodPreference) FavoriteSize(rng *rand.Rand) int {
	switch p {
	case PreferSmallFrequent:
		return 10 + rng.Intn(20) // 10..29
	case PreferBinge:
		return 200 + rng.Intn(300) // 200..499
	case PreferGourmet:
		return gourmetSizes[rng.Intn(len(gourmetSizes))]
	default:
		return 1 + rng.Intn(999) // 1..999
	}
}

// FoodName names a portion by size.
func FoodName(amountMB int) string {
	switch {
	case amountMB <= 15:
		return "Tiny Snack"
	case amountMB <= 30:
		return "Snack"
	case amountMB <= 75:
		return "Meal"
	case amountMB <= 150:
		return "Big Meal"
	case amountMB <= 300:
		return "Feast"
	case amountMB <= 600:
		return "Banquet"
	default:
		return "MEGA GORGE"
	}
}

var (
	namePrefixes = []string{"Byte", "Pixel", "Bit", "Nano", "Mega", "Captain", "Chaos"}
	nameSuffixes = []string{"Munch", "Chomps", "Nibbles", "Gobbler", "Eater", "Cache", "Heap"}
)

// RandomName returns a two-word pet name.
func RandomName(rng *rand.Rand) string {
	return namePrefixes[rng.Intn(len(namePrefixes))] + " " + nameSuffixes[rng.Intn(len(nameSuffixes))]
}
