package assistant

import (
	"regexp"
	"strings"
)

// ContextPrefix introduces the serialized asset list.
const ContextPrefix = "Current assets:"

// AssetRecord is one asset recovered from a context string.
type AssetRecord struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	Location string `json:"location"`
}

var (
	// Name (Type) - Value - Location: Loc
	assetSegmentPattern = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*-\s*(.+?)\s*-\s*Location:\s*(.+?)$`)

	// Segments are split on a comma followed by whitespace so "$10,000" survives.
	segmentSeparator = regexp.MustCompile(`,\s+`)

	whitespaceRun = regexp.MustCompile(`\s+`)
	spacedDash    = regexp.MustCompile(`\s*-\s+|\s+-\s*`)
	locationLabel = regexp.MustCompile(`(?i)location:`)
	parenthesis   = strings.NewReplacer("(", " ", ")", " ")
)

// unknownField stands in for a blank field so the segment still parses.
const unknownField = "Unknown"

// ParseContext turns a context string into asset records in source order.
// Segments that do not match the record layout are dropped.
func ParseContext(context string) []AssetRecord {
	body := strings.TrimSpace(context)
	if idx := strings.Index(strings.ToLower(body), strings.ToLower(ContextPrefix)); idx >= 0 {
		body = body[idx+len(ContextPrefix):]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}

	var records []AssetRecord
	for _, segment := range segmentSeparator.Split(body, -1) {
		m := assetSegmentPattern.FindStringSubmatch(strings.TrimSpace(segment))
		if m == nil {
			continue
		}
		records = append(records, AssetRecord{
			Name:     strings.TrimSpace(m[1]),
			Type:     strings.TrimSpace(m[2]),
			Value:    strings.TrimSpace(m[3]),
			Location: strings.TrimSpace(m[4]),
		})
	}
	return records
}

// FormatContext serializes records into the layout ParseContext reads.
// Fields are cleaned so that ParseContext returns the records it was given,
// up to that cleaning. An empty slice yields an empty string.
func FormatContext(records []AssetRecord) string {
	if len(records) == 0 {
		return ""
	}
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, cleanField(r.Name, true)+
			" ("+cleanField(r.Type, true)+") - "+
			cleanField(r.Value, true)+
			" - Location: "+cleanField(r.Location, false))
	}
	return ContextPrefix + " " + strings.Join(parts, ", ")
}

// cleanField removes what ParseContext would read as structure: the segment
// separator everywhere, and parentheses, spaced dashes and the location
// label in fields that precede the location.
func cleanField(field string, leading bool) string {
	if leading {
		field = parenthesis.Replace(field)
		field = whitespaceRun.ReplaceAllString(field, " ")
		field = spacedDash.ReplaceAllString(field, " / ")
		field = locationLabel.ReplaceAllString(field, "Location")
	}
	field = whitespaceRun.ReplaceAllString(field, " ")
	field = strings.TrimSpace(segmentSeparator.ReplaceAllString(field, ","))
	if field == "" {
		return unknownField
	}
	return field
}

// FindAsset returns the first record whose name contains name or is contained by it,
// ignoring case.
func FindAsset(records []AssetRecord, name string) (AssetRecord, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return AssetRecord{}, false
	}
	for _, r := range records {
		candidate := strings.ToLower(r.Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return r, true
		}
	}
	return AssetRecord{}, false
}

func assetNames(records []AssetRecord) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names
}
