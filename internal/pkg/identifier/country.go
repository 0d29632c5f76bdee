package identifier

// CountryInfo describes dialing metadata for one country.
type CountryInfo struct {
	// Country is the ISO 3166-1 alpha-2 code.
	Country string
	// DialingCode is the international prefix without the leading plus.
	DialingCode string
	// DisplayName is the English country name.
	DisplayName string
	// FormatTemplate groups national digits for display; each rune 'X' consumes
	// one digit, any other rune is emitted verbatim. Leftover digits are appended.
	FormatTemplate string
}

// countries is the static dialing-code table, ordered for readability only;
// lookup is longest-prefix so order does not matter.
var countries = []CountryInfo{
	{Country: "US", DialingCode: "1", DisplayName: "United States", FormatTemplate: "(XXX) XXX-XXXX"},
	{Country: "EG", DialingCode: "20", DisplayName: "Egypt", FormatTemplate: "XX XXXX XXXX"},
	{Country: "ZA", DialingCode: "27", DisplayName: "South Africa", FormatTemplate: "XX XXX XXXX"},
	{Country: "GR", DialingCode: "30", DisplayName: "Greece", FormatTemplate: "XXX XXX XXXX"},
	{Country: "NL", DialingCode: "31", DisplayName: "Netherlands", FormatTemplate: "X XXXX XXXX"},
	{Country: "FR", DialingCode: "33", DisplayName: "France", FormatTemplate: "X XX XX XX XX"},
	{Country: "ES", DialingCode: "34", DisplayName: "Spain", FormatTemplate: "XXX XXX XXX"},
	{Country: "GB", DialingCode: "44", DisplayName: "United Kingdom", FormatTemplate: "XXXX XXXXXX"},
	{Country: "DE", DialingCode: "49", DisplayName: "Germany", FormatTemplate: "XXXX XXXXXXX"},
	{Country: "MX", DialingCode: "52", DisplayName: "Mexico", FormatTemplate: "XX XXXX XXXX"},
	{Country: "BR", DialingCode: "55", DisplayName: "Brazil", FormatTemplate: "XX XXXXX-XXXX"},
	{Country: "MY", DialingCode: "60", DisplayName: "Malaysia", FormatTemplate: "XX-XXX XXXX"},
	{Country: "AU", DialingCode: "61", DisplayName: "Australia", FormatTemplate: "XXX XXX XXX"},
	{Country: "ID", DialingCode: "62", DisplayName: "Indonesia", FormatTemplate: "XXX-XXXX-XXXX"},
	{Country: "PH", DialingCode: "63", DisplayName: "Philippines", FormatTemplate: "XXX XXX XXXX"},
	{Country: "NZ", DialingCode: "64", DisplayName: "New Zealand", FormatTemplate: "XX XXX XXXX"},
	{Country: "SG", DialingCode: "65", DisplayName: "Singapore", FormatTemplate: "XXXX XXXX"},
	{Country: "TH", DialingCode: "66", DisplayName: "Thailand", FormatTemplate: "XX XXX XXXX"},
	{Country: "JP", DialingCode: "81", DisplayName: "Japan", FormatTemplate: "XX-XXXX-XXXX"},
	{Country: "KR", DialingCode: "82", DisplayName: "South Korea", FormatTemplate: "XX-XXXX-XXXX"},
	{Country: "VN", DialingCode: "84", DisplayName: "Vietnam", FormatTemplate: "XXX XXX XXXX"},
	{Country: "CN", DialingCode: "86", DisplayName: "China", FormatTemplate: "XXX XXXX XXXX"},
	{Country: "TR", DialingCode: "90", DisplayName: "Turkey", FormatTemplate: "XXX XXX XXXX"},
	{Country: "IN", DialingCode: "91", DisplayName: "India", FormatTemplate: "XXXXX XXXXX"},
	{Country: "PK", DialingCode: "92", DisplayName: "Pakistan", FormatTemplate: "XXX XXXXXXX"},
	{Country: "NG", DialingCode: "234", DisplayName: "Nigeria", FormatTemplate: "XXX XXX XXXX"},
	{Country: "KE", DialingCode: "254", DisplayName: "Kenya", FormatTemplate: "XXX XXXXXX"},
	{Country: "TZ", DialingCode: "255", DisplayName: "Tanzania", FormatTemplate: "XXX XXX XXX"},
	{Country: "UG", DialingCode: "256", DisplayName: "Uganda", FormatTemplate: "XXX XXXXXX"},
	{Country: "ET", DialingCode: "251", DisplayName: "Ethiopia", FormatTemplate: "XX XXX XXXX"},
	{Country: "GH", DialingCode: "233", DisplayName: "Ghana", FormatTemplate: "XX XXX XXXX"},
	{Country: "BD", DialingCode: "880", DisplayName: "Bangladesh", FormatTemplate: "XXXX-XXXXXX"},
	{Country: "LK", DialingCode: "94", DisplayName: "Sri Lanka", FormatTemplate: "XX XXX XXXX"},
	{Country: "NP", DialingCode: "977", DisplayName: "Nepal", FormatTemplate: "XXX-XXXXXXX"},
	{Country: "MM", DialingCode: "95", DisplayName: "Myanmar", FormatTemplate: "XX XXX XXXX"},
	{Country: "KH", DialingCode: "855", DisplayName: "Cambodia", FormatTemplate: "XX XXX XXX"},
	{Country: "RU", DialingCode: "7", DisplayName: "Russia", FormatTemplate: "XXX XXX-XX-XX"},
	{Country: "KZ", DialingCode: "77", DisplayName: "Kazakhstan", FormatTemplate: "XXX XXX XX XX"},
	{Country: "SA", DialingCode: "966", DisplayName: "Saudi Arabia", FormatTemplate: "XX XXX XXXX"},
	{Country: "AE", DialingCode: "971", DisplayName: "United Arab Emirates", FormatTemplate: "XX XXX XXXX"},
}

// lookupCountry returns the entry whose dialing code is the longest prefix of
// the given digit string, or nil when none matches.
func lookupCountry(digits string) *CountryInfo {
	var best *CountryInfo
	for i := range countries {
		c := &countries[i]
		if len(digits) <= len(c.DialingCode) {
			continue
		}
		if digits[:len(c.DialingCode)] != c.DialingCode {
			continue
		}
		if best == nil || len(c.DialingCode) > len(best.DialingCode) {
			best = c
		}
	}
	return best
}

func formatNational(national, template string) string {
	var b []byte
	i := 0
	for _, r := range template {
		if i >= len(national) {
			break
		}
		if r == 'X' {
			b = append(b, national[i])
			i++
			continue
		}
		b = append(b, string(r)...)
	}
	// digits beyond the template are appended as-is
	if i < len(national) {
		b = append(b, national[i:]...)
	}
	return string(b)
}
