package department

// The municipal department catalog is fixed. Validation, complaint routing,
// login scoping and the seeder all derive from this single list.
const (
	PublicWorks   = "Public Works Department"
	Electricity   = "Electricity Department"
	WaterSupply   = "Water Supply Department"
	Sanitation    = "Sanitation Department"
	RoadTransport = "Road Transport Department"
	PublicHealth  = "Public Health Department"
	Municipal     = "Municipal Corporation"
)

var catalog = []string{
	PublicWorks,
	Electricity,
	WaterSupply,
	Sanitation,
	RoadTransport,
	PublicHealth,
	Municipal,
}

// All returns the catalog in its canonical order.
func All() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

func IsValid(name string) bool {
	for _, d := range catalog {
		if d == name {
			return true
		}
	}
	return false
}

func Count() int {
	return len(catalog)
}
