package telecrm

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// domainPrefix tags unrecognized service names so the CRM dropdown always
// receives a value in its "Dental-..." vocabulary.
const domainPrefix = "Dental-"

// crmDateTimeLayout is the format TeleCRM expects for appointment times.
const crmDateTimeLayout = "02/01/2006 15:04:05"

// ServiceMapping pairs a lower-cased synonym with the canonical CRM label.
// The table is ordered: the first matching entry wins.
type ServiceMapping struct {
	Synonym   string
	Canonical string
}

// DefaultServiceTable maps the clinic's free-text service names onto the CRM
// dropdown values. Entries must stay lower-cased.
var DefaultServiceTable = []ServiceMapping{
	{"dental restorations & fillings", "Dental-Restorations & Fillings"},
	{"dental fillings & restorations", "Dental-Restorations & Fillings"},
	{"dental fillings", "Dental-Restorations & Fillings"},
	{"restorations", "Dental-Restorations & Fillings"},
	{"fillings", "Dental-Restorations & Fillings"},

	{"dental crowns & veneers", "Dental-Crowns & Veneers"},
	{"crowns & veneers", "Dental-Crowns & Veneers"},
	{"dental crowns", "Dental-Crowns & Veneers"},
	{"veneers", "Dental-Crowns & Veneers"},

	{"orthodontic solutions", "Dental-Orthodontic Solutions"},
	{"orthodontics", "Dental-Orthodontic Solutions"},
	{"orthodontic treatments", "Dental-Orthodontic Solutions"},
	{"braces & aligners", "Dental-Orthodontic Solutions"},
	{"braces", "Dental-Orthodontic Solutions"},
	{"aligners", "Dental-Orthodontic Solutions"},

	{"oral prophylaxis", "Dental-Oral Prophylaxis"},
	{"scaling & oral prophylaxis", "Dental-Oral Prophylaxis"},
	{"scaling", "Dental-Oral Prophylaxis"},
	{"cleaning", "Dental-Oral Prophylaxis"},

	{"tooth extractions", "Dental-Tooth Extractions"},
	{"tooth extraction", "Dental-Tooth Extractions"},
	{"extractions", "Dental-Tooth Extractions"},
	{"extraction", "Dental-Tooth Extractions"},

	{"root canal", "Dental-Root Canal"},
	{"root canal treatment", "Dental-Root Canal"},
	{"rct", "Dental-Root Canal"},

	{"flap surgery", "Dental-Flap Surgery"},
	{"periodontal flap surgery", "Dental-Flap Surgery"},

	{"tooth-specific minor surgical care", "Dental-Tooth-Specific Minor Surgical Care"},
	{"tooth surgery", "Dental-Tooth-Specific Minor Surgical Care"},
	{"minor surgical care", "Dental-Tooth-Specific Minor Surgical Care"},
	{"surgical care", "Dental-Tooth-Specific Minor Surgical Care"},

	{"teeth whitening", "Dental-Teeth Whitening"},
	{"tooth whitening", "Dental-Teeth Whitening"},
	{"whitening", "Dental-Teeth Whitening"},
	{"bleaching", "Dental-Teeth Whitening"},

	{"dental implants", "Dental-Dental Implants"},
	{"implants", "Dental-Dental Implants"},
	{"dental implant", "Dental-Dental Implants"},
	{"implant", "Dental-Dental Implants"},

	{"laser gum treatments", "Dental-Laser Gum Treatments"},
	{"laser gum", "Dental-Laser Gum Treatments"},
	{"laser gum treatment", "Dental-Laser Gum Treatments"},
	{"gum treatment", "Dental-Laser Gum Treatments"},
	{"periodontics", "Dental-Laser Gum Treatments"},
	{"gum & bone care", "Dental-Laser Gum Treatments"},
}

// FieldMapper adapts appointment fields into TeleCRM's vocabulary. All of its
// methods are total: they always produce a best-effort value and never fail.
type FieldMapper struct {
	table []ServiceMapping
	now   func() time.Time
}

// NewFieldMapper creates a mapper over the given synonym table, defaulting to
// DefaultServiceTable.
func NewFieldMapper(table []ServiceMapping) *FieldMapper {
	if table == nil {
		table = DefaultServiceTable
	}
	return &FieldMapper{table: table, now: time.Now}
}

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	allDigits       = regexp.MustCompile(`^\d+$`)
)

// FormatPhone normalizes a phone number into +<countrycode><digits>.
// Numbers that cannot be interpreted are returned unchanged.
func (m *FieldMapper) FormatPhone(phone string) string {
	cleaned := phoneSeparators.ReplaceAllString(strings.TrimSpace(phone), "")

	switch {
	case cleaned == "":
		return phone
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "91") && len(cleaned) >= 12:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0"):
		return "+91" + cleaned[1:]
	case allDigits.MatchString(cleaned):
		// 10-digit local numbers and any other all-digit value are assumed
		// to be Indian numbers.
		return "+91" + cleaned
	default:
		return phone
	}
}

// MapServiceToConcern maps a free-text service name onto the CRM's fixed
// client-concern vocabulary, falling back to a title-cased, domain-prefixed
// rendering of the input.
func (m *FieldMapper) MapServiceToConcern(serviceName string) string {
	serviceLower := strings.ToLower(strings.TrimSpace(serviceName))
	if serviceLower == "" {
		return ""
	}

	for _, entry := range m.table {
		if entry.Synonym == serviceLower {
			return entry.Canonical
		}
	}
	for _, entry := range m.table {
		if strings.Contains(serviceLower, entry.Synonym) || strings.Contains(entry.Synonym, serviceLower) {
			return entry.Canonical
		}
	}

	return domainPrefix + titleCase(serviceName)
}

// FormatDateTime renders the preferred date and HH:MM time as TeleCRM's
// dd/MM/yyyy HH:mm:ss. Any malformed input falls back to the current
// wall-clock time rather than failing the channel.
func (m *FieldMapper) FormatDateTime(preferredDate time.Time, preferredTime string) string {
	if preferredDate.IsZero() {
		return m.now().Format(crmDateTimeLayout)
	}

	clock := strings.TrimSpace(preferredTime)
	if clock == "" {
		clock = "09:00"
	}
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return m.now().Format(crmDateTimeLayout)
	}

	return fmt.Sprintf("%s %02d:%02d:00",
		preferredDate.Format("02/01/2006"),
		parsed.Hour(),
		parsed.Minute(),
	)
}

var tokenSplitter = regexp.MustCompile(`[\s&\-]+`)

func titleCase(s string) string {
	tokens := tokenSplitter.Split(strings.TrimSpace(s), -1)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		out = append(out, strings.ToUpper(tok[:1])+strings.ToLower(tok[1:]))
	}
	return strings.Join(out, " ")
}
