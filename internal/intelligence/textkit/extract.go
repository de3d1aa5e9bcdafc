package textkit

import "strings"

// manufacturerLabels is the ordered list of label patterns scanned for when
// extracting a manufacturer name from free text.  Order matters: the first
// label found in the text wins.
var manufacturerLabels = []string{
	"manufacturer:",
	"applicant:",
	"company:",
	"sponsor:",
}

// sentenceBoundaries terminate a matched manufacturer span.
var sentenceBoundaries = []string{".", ";", "\n", "!", "?"}

// devicePrefixes are the regulatory prefixes stripped from the front of a
// title when extracting a device name: authority names, filing-type labels,
// and action-type labels.  Longer prefixes must precede their own prefixes so
// the most specific match strips first.
var devicePrefixes = []string{
	"fda approves",
	"fda clears",
	"fda recalls",
	"fda",
	"ema",
	"mhra",
	"pmda",
	"nmpa",
	"health canada",
	"tga",
	"510(k) clearance:",
	"510(k)",
	"pma approval:",
	"pma",
	"ce mark:",
	"ce marking:",
	"recall notice:",
	"recall:",
	"safety alert:",
	"approval:",
	"clearance:",
	"registration:",
}

// ExtractManufacturer scans text for the first manufacturer label pattern and
// returns the trailing text up to the next sentence boundary, trimmed.  The
// second return is false when no label matches or the matched span is empty;
// callers must treat that as insufficient signal, not as "no manufacturer".
func ExtractManufacturer(text string) (string, bool) {
	lower := strings.ToLower(text)
	bestIdx := -1
	bestLabel := ""
	for _, label := range manufacturerLabels {
		idx := strings.Index(lower, label)
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			bestIdx = idx
			bestLabel = label
		}
	}
	if bestIdx < 0 {
		return "", false
	}

	span := text[bestIdx+len(bestLabel):]
	end := len(span)
	for _, boundary := range sentenceBoundaries {
		if idx := strings.Index(span, boundary); idx >= 0 && idx < end {
			end = idx
		}
	}
	name := strings.TrimSpace(span[:end])
	if name == "" {
		return "", false
	}
	return name, true
}

// ExtractDeviceName strips known regulatory prefixes from the front of a
// title and returns what remains.  Stripping repeats until no prefix matches
// so compound titles like "FDA 510(k) Clearance: CardioStent X" reduce fully.
// The second return is false when the title is empty or reduces to nothing.
func ExtractDeviceName(title string) (string, bool) {
	name := strings.TrimSpace(title)
	for {
		lower := strings.ToLower(name)
		stripped := false
		for _, prefix := range devicePrefixes {
			if strings.HasPrefix(lower, prefix) {
				name = strings.TrimSpace(name[len(prefix):])
				name = strings.TrimLeft(name, ":-– ")
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	if name == "" {
		return "", false
	}
	return name, true
}
