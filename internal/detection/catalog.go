package detection

import "strings"

// Defect is the canonical narrative for a detectable defect class
type Defect struct {
	Finding        string `json:"finding"`
	Recommendation string `json:"recommendation"`
}

// Defect class names reported by the detector
const (
	DefectCorrosion      = "corrosion"
	DefectDents          = "dents"
	DefectScratchMark    = "scratch_mark"
	DefectWeldingDefects = "welding_defects"
	DefectNone           = "no_defect"
)

var defectOrder = []string{DefectCorrosion, DefectDents, DefectScratchMark, DefectWeldingDefects, DefectNone}

// Catalog maps each defect class to its canonical finding and recommendation
var Catalog = map[string]Defect{
	DefectCorrosion: {
		Finding:        "Surface corrosion and rust detected on metal surface.",
		Recommendation: "Clean affected area and apply anti-corrosion coating. Monitor for progression.",
	},
	DefectDents: {
		Finding:        "Surface deformation/dent observed on structure.",
		Recommendation: "Assess depth and structural impact. Repair or replace if compromising integrity.",
	},
	DefectScratchMark: {
		Finding:        "Scratch marks detected on surface.",
		Recommendation: "Evaluate depth. Apply protective coating if surface integrity is compromised.",
	},
	DefectWeldingDefects: {
		Finding:        "Weld irregularity or defect detected.",
		Recommendation: "Inspect weld quality. Re-weld if structural integrity is at risk.",
	},
	DefectNone: {
		Finding:        "No significant defects detected.",
		Recommendation: "Maintain routine monitoring and scheduled inspections.",
	},
}

// DefectTypes returns the defect classes in display order
func DefectTypes() []string {
	out := make([]string, len(defectOrder))
	copy(out, defectOrder)
	return out
}

// StatCategories are the defect classes counted by the equipment statistics
func StatCategories() []string {
	return defectOrder[:4]
}

// Classify assigns a free-text finding to a defect class by keyword.
// The first matching class wins; "" means the text matched none.
func Classify(description string) string {
	desc := strings.ToLower(description)
	switch {
	case strings.Contains(desc, "corrosion") || strings.Contains(desc, "rust"):
		return DefectCorrosion
	case strings.Contains(desc, "dent") || strings.Contains(desc, "deformation"):
		return DefectDents
	case strings.Contains(desc, "scratch") || strings.Contains(desc, "mark") || strings.Contains(desc, "paint"):
		return DefectScratchMark
	case strings.Contains(desc, "weld"):
		return DefectWeldingDefects
	}
	return ""
}
