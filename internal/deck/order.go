package deck

import "fmt"

// ResponsivenessLevel is the service tier of an order. The set is closed;
// an unrecognized value in source data is a data error, not a new tier.
type ResponsivenessLevel string

const (
	LevelNone       ResponsivenessLevel = "None" // displayed as "Spec"
	LevelSelect     ResponsivenessLevel = "Select"
	LevelSelectPlus ResponsivenessLevel = "SelectPlus"
	LevelSOOPremium ResponsivenessLevel = "SOOPremium"
)

// Levels lists every responsiveness level in report order.
var Levels = []ResponsivenessLevel{LevelNone, LevelSelect, LevelSelectPlus, LevelSOOPremium}

// ParseResponsiveness converts a raw tier value into a ResponsivenessLevel.
func ParseResponsiveness(s string) (ResponsivenessLevel, error) {
	switch ResponsivenessLevel(s) {
	case LevelNone, LevelSelect, LevelSelectPlus, LevelSOOPremium:
		return ResponsivenessLevel(s), nil
	}
	return "", fmt.Errorf("unrecognized responsiveness level %q", s)
}

// Display returns the operator-facing tier name. The "None" tier is
// referred to as "Spec" everywhere humans read it.
func (l ResponsivenessLevel) Display() string {
	if l == LevelNone {
		return "Spec"
	}
	return string(l)
}

// Spacecraft identifiers carried as eligibility flags on an order.
const (
	VehicleGE01 = "GE01"
	VehicleWV01 = "WV01"
	VehicleWV02 = "WV02"
	VehicleWV03 = "WV03"
)

// Order is one row of the tasking deck.
type Order struct {
	ID              string // external order identifier (SOLI)
	TaskingPriority int
	SSRPriority     int    // priority tracked by the secondary system
	Customer        string // SAP customer identifier
	Responsiveness  ResponsivenessLevel
	GE01            bool
	WV01            bool
	WV02            bool
	WV03            bool
	Description     string
	PurchaseOrder   string
	PricePerArea    float64
}

// EligibleVehicles returns the spacecraft this order can be serviced by.
func (o Order) EligibleVehicles() []string {
	var vehicles []string
	if o.GE01 {
		vehicles = append(vehicles, VehicleGE01)
	}
	if o.WV01 {
		vehicles = append(vehicles, VehicleWV01)
	}
	if o.WV02 {
		vehicles = append(vehicles, VehicleWV02)
	}
	if o.WV03 {
		vehicles = append(vehicles, VehicleWV03)
	}
	return vehicles
}

// MiddleDigit returns the tens digit of a tasking priority (customer tier).
func MiddleDigit(priority int) int {
	return (priority - 700) / 10
}

// EndingDigit returns the units digit of a tasking priority
// (spacecraft eligibility or customer override).
func EndingDigit(priority int) int {
	return priority % 10
}
