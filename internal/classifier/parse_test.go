package classifier

import "testing"

func TestParseReply_LabeledEnglishReply(t *testing.T) {
	reply := `Sponsored: yes
Advertiser: NordVPN
Product: VPN subscription
Keywords: use code, sponsored by
Country: SA`

	p := parseReply(reply)

	if !p.hasVerdict || !p.sponsored {
		t.Fatalf("verdict = (%v, %v), want explicit yes", p.hasVerdict, p.sponsored)
	}
	if p.advertiser != "NordVPN" {
		t.Errorf("advertiser = %q", p.advertiser)
	}
	if p.product != "VPN subscription" {
		t.Errorf("product = %q", p.product)
	}
	if p.keywords != "use code, sponsored by" {
		t.Errorf("keywords = %q", p.keywords)
	}
	if p.country != "SA" {
		t.Errorf("country = %q", p.country)
	}
	if p.parseError != "" {
		t.Errorf("unexpected parse error %q", p.parseError)
	}
}

func TestParseReply_NotSponsoredShortCircuit(t *testing.T) {
	p := parseReply("Not sponsored.")

	if !p.hasVerdict || !p.explicitlyNo || p.sponsored {
		t.Errorf("parsed = %+v, want explicit not-sponsored", p)
	}
}

func TestParseReply_NotSponsoredMarkerBeatsPopulatedFields(t *testing.T) {
	// Models sometimes answer "not sponsored" and still fill the fields in.
	// The explicit marker must win and the evidence must be discarded.
	reply := `Not sponsored.
Advertiser: NordVPN
Keywords: use code`

	p := parseReply(reply)

	if p.sponsored {
		t.Error("populated fields upgraded an explicit not-sponsored")
	}
	if p.advertiser != "" || p.keywords != "" {
		t.Errorf("evidence kept after explicit no: advertiser=%q keywords=%q", p.advertiser, p.keywords)
	}
}

func TestParseReply_NotSponsoredKeepsCountry(t *testing.T) {
	reply := `Not sponsored.
Country: SA`

	p := parseReply(reply)

	if p.sponsored {
		t.Error("explicit not-sponsored upgraded")
	}
	if p.country != "SA" {
		t.Errorf("country = %q, want SA kept alongside a not-sponsored verdict", p.country)
	}
}

func TestParseReply_ArabicLabels(t *testing.T) {
	reply := `مدعوم: نعم
المعلن: شركة الاتصالات
المنتج: باقة إنترنت
الكلمات: برعاية
الدولة: EG`

	p := parseReply(reply)

	if !p.hasVerdict || !p.sponsored {
		t.Fatalf("verdict = (%v, %v), want explicit yes", p.hasVerdict, p.sponsored)
	}
	if p.advertiser != "شركة الاتصالات" {
		t.Errorf("advertiser = %q", p.advertiser)
	}
	if p.country != "EG" {
		t.Errorf("country = %q", p.country)
	}
}

func TestParseReply_ArabicNotSponsored(t *testing.T) {
	p := parseReply("غير مدعوم.")

	if !p.hasVerdict || p.sponsored {
		t.Errorf("parsed = %+v, want explicit not-sponsored", p)
	}
}

func TestParseReply_MarkdownDecoration(t *testing.T) {
	reply := `**Sponsored:** yes
- Advertiser: **Acme Tools**
- Product: none
- Keywords: "promo code"`

	p := parseReply(reply)

	if !p.sponsored {
		t.Fatal("expected sponsored verdict through markdown noise")
	}
	if p.advertiser != "Acme Tools" {
		t.Errorf("advertiser = %q, want decoration stripped", p.advertiser)
	}
	if p.product != "" {
		t.Errorf("product = %q, want empty for none", p.product)
	}
	if p.keywords != "promo code" {
		t.Errorf("keywords = %q, want quotes stripped", p.keywords)
	}
}

func TestParseReply_ImplicitSponsorshipFromFields(t *testing.T) {
	// No verdict line, but evidence fields are populated.
	reply := `Advertiser: HelloFresh
Keywords: discount code`

	p := parseReply(reply)

	if !p.hasVerdict || !p.sponsored {
		t.Errorf("parsed = %+v, want implicit sponsored", p)
	}
	if p.parseError != "" {
		t.Errorf("unexpected parse error %q", p.parseError)
	}
}

func TestParseReply_VerdictWithTrailingProse(t *testing.T) {
	p := parseReply("Sponsored: yes, this is clearly a paid promotion for a VPN.")

	if !p.hasVerdict || !p.sponsored {
		t.Errorf("parsed = %+v, want yes despite trailing prose", p)
	}
}

func TestParseReply_ExplicitNoVerdictLine(t *testing.T) {
	reply := `Sponsored: no
Advertiser: none
Keywords: none`

	p := parseReply(reply)

	if !p.hasVerdict || p.sponsored {
		t.Errorf("parsed = %+v, want explicit no", p)
	}
}

func TestParseReply_UnparseableReply(t *testing.T) {
	for _, reply := range []string{
		"",
		"I cannot determine that from the given text.",
		"The text appears to be a discussion of cooking recipes.",
	} {
		p := parseReply(reply)
		if p.hasVerdict {
			t.Errorf("parseReply(%q) produced a verdict", reply)
		}
		if p.parseError == "" {
			t.Errorf("parseReply(%q) missing parse error", reply)
		}
	}
}

func TestCleanFieldValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Acme  ", "Acme"},
		{"**Acme**", "Acme"},
		{"none", ""},
		{"N/A", ""},
		{"لا يوجد", ""},
		{"-", ""},
		{"unknown", ""},
	}
	for _, tt := range tests {
		if got := cleanFieldValue(tt.in); got != tt.want {
			t.Errorf("cleanFieldValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPredominantlyArabic(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"هذا نص عربي بالكامل", true},
		{"plain english text", false},
		{"عربي with some english كلمات كثيرة هنا", true},
		{"mostly english with كلمة", false},
		{"", false},
		{"12345 !!!", false},
	}
	for _, tt := range tests {
		if got := isPredominantlyArabic(tt.text); got != tt.want {
			t.Errorf("isPredominantlyArabic(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
