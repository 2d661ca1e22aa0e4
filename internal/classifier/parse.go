package classifier

import (
	"regexp"
	"strings"
)

// parsedReply is the structured form of one raw provider reply.
type parsedReply struct {
	sponsored    bool
	hasVerdict   bool
	advertiser   string
	product      string
	keywords     string
	country      string
	parseError   string
	explicitlyNo bool
}

// The provider gives no structural guarantees, so extraction is tolerant:
// optional markdown bullets, either colon style, and English or Arabic
// labels are all accepted.
var (
	notSponsoredMarkers = []string{
		"not sponsored",
		"no sponsorship",
		"غير مدعوم",
		"غير ممول",
		"ليس مدعوما",
		"ليس إعلانا",
	}

	sponsoredFieldRe  = regexp.MustCompile(`(?mi)^[\s*\-#>]*(?:sponsored|مدعوم|ممول)\s*[:：]\s*(.+)$`)
	advertiserFieldRe = regexp.MustCompile(`(?mi)^[\s*\-#>]*(?:advertiser|brand|المعلن|العلامة التجارية)\s*[:：]\s*(.+)$`)
	productFieldRe    = regexp.MustCompile(`(?mi)^[\s*\-#>]*(?:product|service|المنتج|الخدمة)\s*[:：]\s*(.+)$`)
	keywordsFieldRe   = regexp.MustCompile(`(?mi)^[\s*\-#>]*(?:keywords?|phrases?|الكلمات(?: المفتاحية)?|العبارات)\s*[:：]\s*(.+)$`)
	countryFieldRe    = regexp.MustCompile(`(?mi)^[\s*\-#>]*(?:country|الدولة|البلد)\s*[:：]\s*(.+)$`)

	yesValues = []string{"yes", "نعم", "اجل", "أجل"}
	noValues  = []string{"no", "لا", "كلا"}
)

// parseReply turns a free-text provider reply into a parsedReply.
//
// Precedence, in order:
//  1. an explicit "not sponsored" marker anywhere wins outright; populated
//     fields never upgrade it back to sponsored
//  2. an explicit labeled yes/no verdict
//  3. populated advertiser/product/keyword fields without any verdict are
//     treated as implicitly sponsored
//  4. a reply with no verdict and no fields is a parse error, not a guess
func parseReply(reply string) parsedReply {
	var p parsedReply

	lower := strings.ToLower(reply)
	for _, marker := range notSponsoredMarkers {
		if strings.Contains(lower, marker) {
			p.hasVerdict = true
			p.explicitlyNo = true
			// Country describes the author, not the sponsorship, so it is
			// kept even when the evidence fields are discarded.
			p.country = extractField(countryFieldRe, reply)
			return p
		}
	}

	if raw := extractField(sponsoredFieldRe, reply); raw != "" {
		if verdict, ok := parseVerdict(raw); ok {
			p.hasVerdict = true
			p.sponsored = verdict
			p.explicitlyNo = !verdict
		}
	}

	p.advertiser = extractField(advertiserFieldRe, reply)
	p.product = extractField(productFieldRe, reply)
	p.keywords = extractField(keywordsFieldRe, reply)
	p.country = extractField(countryFieldRe, reply)

	if p.explicitlyNo {
		// An explicit "no" keeps evidence fields empty.
		p.advertiser, p.product, p.keywords = "", "", ""
		return p
	}

	hasFields := p.advertiser != "" || p.product != "" || p.keywords != ""
	if !p.hasVerdict && hasFields {
		p.hasVerdict = true
		p.sponsored = true
	}

	if !p.hasVerdict {
		p.parseError = "unparseable classifier reply: no verdict and no labeled fields"
	}

	return p
}

// extractField returns the first cleaned match of re in reply, or "".
func extractField(re *regexp.Regexp, reply string) string {
	m := re.FindStringSubmatch(reply)
	if m == nil {
		return ""
	}
	return cleanFieldValue(m[1])
}

// cleanFieldValue trims decoration and maps the provider's spellings of
// "nothing here" to the empty string.
func cleanFieldValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "*_`\"'“”.")
	v = strings.TrimSpace(v)

	switch strings.ToLower(v) {
	case "", "none", "n/a", "na", "-", "unknown", "لا يوجد", "لا شيء", "غير معروف":
		return ""
	}
	return v
}

// parseVerdict maps a sponsored-field value to a boolean verdict.
func parseVerdict(raw string) (verdict, ok bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	// Keep only the leading token: models pad verdicts with prose.
	if idx := strings.IndexAny(value, " ,.;:("); idx > 0 {
		value = value[:idx]
	}

	for _, yes := range yesValues {
		if value == yes {
			return true, true
		}
	}
	for _, no := range noValues {
		if value == no {
			return false, true
		}
	}
	return false, false
}
