package normalize

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sex categories. NormalizeSex is total: every input maps to one of these.
const (
	SexMale    = "male"
	SexFemale  = "female"
	SexUnknown = "unknown"
)

// sexSynonyms covers English letters, numeric codes, and the Thai words for
// male/female/unknown. Lookup is case-folded and whitespace-trimmed.
var sexSynonyms = map[string]string{
	"m": SexMale, "male": SexMale, "ชาย": SexMale, "1": SexMale,
	"f": SexFemale, "female": SexFemale, "หญิง": SexFemale, "2": SexFemale,
	"x": SexUnknown, "u": SexUnknown, "unk": SexUnknown, "unknown": SexUnknown,
	"ไม่ทราบ": SexUnknown, "0": SexUnknown, "": SexUnknown,
}

// NormalizeSex maps a raw sex cell to male/female/unknown. Unrecognized
// tokens are unknown, never an error.
func NormalizeSex(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if out, ok := sexSynonyms[s]; ok {
		return out
	}
	return SexUnknown
}

// Vehicle-cause categories produced by VehicleType.
const (
	VehiclePedestrian    = "Pedestrian"
	VehicleBicycle       = "Bicycle"
	VehicleMotorcycle    = "Motorcycle"
	VehicleThreeWheeler  = "Three-wheeler"
	VehicleCar           = "Car"
	VehiclePickupVan     = "Pickup/Van"
	VehicleTruckHeavy    = "Truck/Heavy"
	VehicleBus           = "Bus"
	VehicleAnimal        = "Animal/Animal-drawn"
	VehicleRailTram      = "Rail/Tram/Other non-motor"
	VehicleATVIndustrial = "ATV/Industrial"
	VehicleMultiPerson   = "Multiple/Unspecified person"
	VehicleUnspecMotor   = "Unspecified motor vehicle"
	VehicleNonRoad       = "Non-road or unspecified"
	VehicleUnspecified   = "Unspecified"
)

// VehicleType classifies an ICD10-style external-cause code into a vehicle
// category by the numeric range after the "V" prefix. The function is total
// and pure: the same code always yields the same category and malformed
// codes land in an unspecified bucket.
func VehicleType(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if utf8.RuneCountInString(c) < 2 {
		return VehicleUnspecified
	}
	if c[0] != 'V' {
		return VehicleNonRoad
	}

	// First run of digits after the prefix; "V20.1" classifies as "V20".
	rest := c[1:]
	start := -1
	end := len(rest)
	for i, ch := range rest {
		if ch >= '0' && ch <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 || end-start < 2 {
		return VehicleUnspecified
	}
	v, err := strconv.Atoi(rest[start : start+2])
	if err != nil {
		return VehicleUnspecified
	}

	switch {
	case v >= 1 && v <= 9:
		return VehiclePedestrian
	case v >= 10 && v <= 19:
		return VehicleBicycle
	case v >= 20 && v <= 29:
		return VehicleMotorcycle
	case v >= 30 && v <= 39:
		return VehicleThreeWheeler
	case v >= 40 && v <= 49:
		return VehicleCar
	case v >= 50 && v <= 59:
		return VehiclePickupVan
	case v >= 60 && v <= 69:
		return VehicleTruckHeavy
	case v >= 70 && v <= 79:
		return VehicleBus
	case v == 80:
		return VehicleAnimal
	case v >= 81 && v <= 82:
		return VehicleRailTram
	case v >= 83 && v <= 86:
		return VehicleATVIndustrial
	case v >= 87 && v <= 88:
		return VehicleMultiPerson
	case v == 89:
		return VehicleUnspecMotor
	}
	return VehicleUnspecified
}

// AgeBinner assigns ages to right-closed brackets, e.g. [0,14], (14,24], ...
type AgeBinner struct {
	edges  []float64
	labels []string
}

// NewAgeBinner builds a binner from edges and labels; len(edges) must be
// len(labels)+1 (validated at config time).
func NewAgeBinner(edges []float64, labels []string) *AgeBinner {
	return &AgeBinner{edges: edges, labels: labels}
}

// Bin returns the bracket label for age, or ("", false) when the age falls
// outside the scheme. Callers map non-numeric input to the missing bracket
// before ever reaching here.
func (b *AgeBinner) Bin(age float64) (string, bool) {
	if len(b.edges) < 2 || age < b.edges[0] || age > b.edges[len(b.edges)-1] {
		return "", false
	}
	for i := 0; i < len(b.labels); i++ {
		if age <= b.edges[i+1] {
			return b.labels[i], true
		}
	}
	return "", false
}

// Tri is a three-valued flag. Missing must stay distinguishable from No in
// every rate computation: missing rows join neither numerator nor
// denominator.
type Tri int8

const (
	TriMissing Tri = iota
	TriNo
	TriYes
)

// RiskRule classifies free-text risk-factor cells into a Tri using
// configured token sets, falling back to numeric 0/1 coercion.
type RiskRule struct {
	yes, no, unknown map[string]struct{}
}

// NewRiskRule lowercases the configured token sets once.
func NewRiskRule(yes, no, unknown []string) RiskRule {
	fold := func(in []string) map[string]struct{} {
		m := make(map[string]struct{}, len(in))
		for _, s := range in {
			m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
		return m
	}
	return RiskRule{yes: fold(yes), no: fold(no), unknown: fold(unknown)}
}

// Classify maps one raw cell to a Tri. Token sets win over numeric coercion;
// anything unmatched is missing.
func (r RiskRule) Classify(raw string) Tri {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return TriMissing
	}
	if _, ok := r.yes[s]; ok {
		return TriYes
	}
	if _, ok := r.no[s]; ok {
		return TriNo
	}
	if _, ok := r.unknown[s]; ok {
		return TriMissing
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		switch f {
		case 1:
			return TriYes
		case 0:
			return TriNo
		}
	}
	return TriMissing
}

// DeathRule detects fatal outcomes by case-insensitive substring match of
// any configured token in any configured field.
type DeathRule struct {
	tokens []string
}

// NewDeathRule lowercases the token set once.
func NewDeathRule(tokens []string) DeathRule {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return DeathRule{tokens: out}
}

// Hit reports whether the raw cell contains any death token.
func (d DeathRule) Hit(raw string) bool {
	if raw == "" {
		return false
	}
	s := strings.ToLower(raw)
	for _, tok := range d.tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
