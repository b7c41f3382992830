package catalog

// Local tax classes applied to imported products and variants.
const (
	TaxClassStandard = "standard"
	TaxClassZeroRate = "zero-rate"
	TaxClassReduced  = "reduced-rate"
)

// TaxClassForCode maps a remote tax code ID to a local tax class. Unknown
// codes map to the empty string, which the store treats as its default class.
func TaxClassForCode(code string) string {
	switch code {
	case "1":
		return TaxClassStandard
	case "2":
		return TaxClassZeroRate
	case "3":
		return TaxClassReduced
	default:
		return ""
	}
}
