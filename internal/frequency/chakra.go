package frequency

const (
	ROOT         = "Root"
	SACRAL       = "Sacral"
	SOLAR_PLEXUS = "Solar Plexus"
	HEART        = "Heart"
	THROAT       = "Throat"
	THIRD_EYE    = "Third Eye"
	CROWN        = "Crown"
)

type Solfeggio struct {
	Frequency float64
	Name      string
	Chakra    string
}

// SolfeggioFrequencies are the reference tones of the catalog, lowest first.
// 174 and 285 Hz have no chakra of their own and fall back to the ranges.
var SolfeggioFrequencies = []Solfeggio{
	{Frequency: 174, Name: "Foundation"},
	{Frequency: 285, Name: "Regeneration"},
	{Frequency: 396, Name: "Liberation", Chakra: ROOT},
	{Frequency: 417, Name: "Change", Chakra: SACRAL},
	{Frequency: 528, Name: "Transformation", Chakra: SOLAR_PLEXUS},
	{Frequency: 639, Name: "Connection", Chakra: HEART},
	{Frequency: 741, Name: "Expression", Chakra: THROAT},
	{Frequency: 852, Name: "Intuition", Chakra: THIRD_EYE},
	{Frequency: 963, Name: "Oneness", Chakra: CROWN},
}

var chakraColors = map[string]string{
	ROOT:         "#FF0000",
	SACRAL:       "#FF7F00",
	SOLAR_PLEXUS: "#FFFF00",
	HEART:        "#00FF00",
	THROAT:       "#0000FF",
	THIRD_EYE:    "#4B0082",
	CROWN:        "#8B00FF",
}

// FrequencyToChakra maps a frequency to its chakra. Solfeggio tones map to their
// traditional chakra, anything else goes through the half-open ranges.
func FrequencyToChakra(freq float64) string {
	for _, s := range SolfeggioFrequencies {
		if s.Chakra != "" && s.Frequency == freq {
			return s.Chakra
		}
	}

	switch {
	case freq < 200:
		return ROOT
	case freq < 350:
		return SACRAL
	case freq < 450:
		return SOLAR_PLEXUS
	case freq < 550:
		return HEART
	case freq < 650:
		return THROAT
	case freq < 750:
		return THIRD_EYE
	default:
		return CROWN
	}
}

// ChakraColor returns the hex color of a chakra, or white for an unknown name.
func ChakraColor(chakra string) string {
	if color, ok := chakraColors[chakra]; ok {
		return color
	}
	return "#FFFFFF"
}

func FrequencyToColor(freq float64) string {
	return ChakraColor(FrequencyToChakra(freq))
}

// SolfeggioName returns the name of a reference tone, or "" when freq is not one.
func SolfeggioName(freq float64) string {
	for _, s := range SolfeggioFrequencies {
		if s.Frequency == freq {
			return s.Name
		}
	}
	return ""
}
