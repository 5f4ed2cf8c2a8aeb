package normalize

import "testing"

// TestVehicleType pins the ICD10 V-code range map, including the malformed
// and short-code buckets.
func TestVehicleType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"V20", VehicleMotorcycle},
		{"V205", VehicleMotorcycle},
		{"V20.1", VehicleMotorcycle},
		{"v23", VehicleMotorcycle}, // case-folded
		{" V45 ", VehicleCar},      // trimmed
		{"V01", VehiclePedestrian},
		{"V09", VehiclePedestrian},
		{"V10", VehicleBicycle},
		{"V31", VehicleThreeWheeler},
		{"V58", VehiclePickupVan},
		{"V62", VehicleTruckHeavy},
		{"V79", VehicleBus},
		{"V80", VehicleAnimal},
		{"V81", VehicleRailTram},
		{"V82", VehicleRailTram},
		{"V83", VehicleATVIndustrial},
		{"V86", VehicleATVIndustrial},
		{"V87", VehicleMultiPerson},
		{"V88", VehicleMultiPerson},
		{"V89", VehicleUnspecMotor},
		{"V00", VehicleUnspecified}, // 0 is outside every named range
		{"V90", VehicleUnspecified},
		{"V99", VehicleUnspecified},
		{"X59", VehicleNonRoad},
		{"W17", VehicleNonRoad},
		{"", VehicleUnspecified},
		{"V", VehicleUnspecified},   // too short to check digits
		{"V9", VehicleUnspecified},  // only one digit available
		{"V2A", VehicleUnspecified}, // digit run too short
		{"VAB", VehicleUnspecified},
		{"ก", VehicleUnspecified}, // one character, multi-byte
		{"กข", VehicleNonRoad},
	}

	for _, tt := range tests {
		if got := VehicleType(tt.code); got != tt.want {
			t.Errorf("VehicleType(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestVehicleTypePure double-applies the classifier to confirm purity.
func TestVehicleTypePure(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"V20", "X59", "", "junk", "V9"} {
		if VehicleType(code) != VehicleType(code) {
			t.Errorf("VehicleType(%q) is not deterministic", code)
		}
	}
}

// TestNormalizeSex verifies totality and the synonym table: English letters,
// numeric codes, Thai words, and junk all map to exactly one category.
func TestNormalizeSex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"M", SexMale},
		{"m", SexMale},
		{" Male ", SexMale},
		{"ชาย", SexMale},
		{"1", SexMale},
		{"F", SexFemale},
		{"female", SexFemale},
		{"หญิง", SexFemale},
		{"2", SexFemale},
		{"0", SexUnknown},
		{"x", SexUnknown},
		{"ไม่ทราบ", SexUnknown},
		{"", SexUnknown},
		{"banana", SexUnknown},
		{"3", SexUnknown},
	}
	for _, tt := range tests {
		got := NormalizeSex(tt.raw)
		if got != tt.want {
			t.Errorf("NormalizeSex(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		// Idempotent: normalizing an already-normalized value is stable.
		if again := NormalizeSex(got); again != got {
			t.Errorf("NormalizeSex not idempotent: %q -> %q -> %q", tt.raw, got, again)
		}
	}
}

// TestAgeBinner checks the right-closed bracket boundaries of the default
// scheme, including both edges of every bracket.
func TestAgeBinner(t *testing.T) {
	t.Parallel()

	b := NewAgeBinner(
		[]float64{0, 14, 24, 44, 64, 200},
		[]string{"0-14", "15-24", "25-44", "45-64", "65+"},
	)

	tests := []struct {
		age    float64
		want   string
		wantOK bool
	}{
		{0, "0-14", true},
		{14, "0-14", true},
		{14.5, "15-24", true},
		{15, "15-24", true},
		{24, "15-24", true},
		{25, "25-44", true},
		{44, "25-44", true},
		{45, "45-64", true},
		{64, "45-64", true},
		{65, "65+", true},
		{120, "65+", true},
		{200, "65+", true},
		{-1, "", false},
		{201, "", false},
	}
	for _, tt := range tests {
		got, ok := b.Bin(tt.age)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Bin(%v) = %q,%v, want %q,%v", tt.age, got, ok, tt.want, tt.wantOK)
		}
	}
}

// TestRiskRuleClassify covers token sets, numeric coercion, and the
// missing-vs-no distinction, including the Thai unknown token.
func TestRiskRuleClassify(t *testing.T) {
	t.Parallel()

	r := NewRiskRule(
		[]string{"yes", "y", "ดื่ม"},
		[]string{"no", "n", "ไม่ดื่ม"},
		[]string{"unk", "ไม่ทราบ"},
	)

	tests := []struct {
		raw  string
		want Tri
	}{
		{"yes", TriYes},
		{" Y ", TriYes},
		{"ดื่ม", TriYes},
		{"no", TriNo},
		{"ไม่ดื่ม", TriNo},
		{"unk", TriMissing},
		{"ไม่ทราบ", TriMissing},
		{"1", TriYes},
		{"1.0", TriYes},
		{"0", TriNo},
		{"2", TriMissing}, // numeric but not 0/1
		{"", TriMissing},
		{"maybe", TriMissing},
	}
	for _, tt := range tests {
		if got := r.Classify(tt.raw); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

// TestDeathRuleHit checks case-insensitive substring semantics.
func TestDeathRuleHit(t *testing.T) {
	t.Parallel()

	d := NewDeathRule([]string{"dead", "เสียชีวิต"})

	tests := []struct {
		raw  string
		want bool
	}{
		{"DEAD on arrival", true},
		{"patient dead", true},
		{"เสียชีวิตที่เกิดเหตุ", true},
		{"discharged", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := d.Hit(tt.raw); got != tt.want {
			t.Errorf("Hit(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
