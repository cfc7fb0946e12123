package frequency

import (
	"math"
)

const minSearchWindow = 20

// MAX_FREQUENCY bounds the frequencies accepted from users, it keeps the primality
// checks of an analysis short.
const MAX_FREQUENCY = 1000000

// InRange reports whether freq is a finite frequency in [0, MAX_FREQUENCY].
func InRange(freq float64) bool {
	return freq >= 0 && freq <= MAX_FREQUENCY
}

type Analysis struct {
	Frequency    float64 `json:"frequency"`
	Rounded      float64 `json:"rounded"`
	IsPrime      bool    `json:"is_prime"`
	ClosestPrime *int64  `json:"closest_prime,omitempty"`
	Distance     *int64  `json:"distance,omitempty"`
	Chakra       string  `json:"chakra"`
	Color        string  `json:"color"`
}

// AnalyzeFrequency rounds freq to the nearest multiple of tolerance (when tolerance > 0)
// and checks the primality of the result. A non prime value is completed with the
// nearest prime found in a window of max(20, 10% of freq) around it, the lower prime
// winning ties. ClosestPrime stays nil when the window holds no prime.
func AnalyzeFrequency(freq float64, tolerance float64) Analysis {
	rounded := freq
	if tolerance > 0 {
		rounded = math.Round(freq/tolerance) * tolerance
	}

	analysis := Analysis{
		Frequency: freq,
		Rounded:   rounded,
		Chakra:    FrequencyToChakra(freq),
	}
	analysis.Color = ChakraColor(analysis.Chakra)

	n := int64(math.Round(rounded))
	if IsPrime(n) {
		analysis.IsPrime = true
		return analysis
	}

	window := int64(math.Max(minSearchWindow, math.Abs(freq)*0.1))
	for d := int64(1); d <= window; d++ {
		for _, candidate := range []int64{n - d, n + d} {
			if IsPrime(candidate) {
				prime, distance := candidate, d
				analysis.ClosestPrime = &prime
				analysis.Distance = &distance
				return analysis
			}
		}
	}

	return analysis
}
