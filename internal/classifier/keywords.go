package classifier

// sponsorshipPhrases is the fixed, ordered list of sponsorship indicators
// scanned by the heuristic classifier. Order is load-bearing: when several
// phrases occur in one text, the first phrase in this list is the one
// reported, and that must be stable across runs. All entries are lowercase;
// input text is lowercased before matching.
var sponsorshipPhrases = []string{
	// Arabic
	"#إعلان",
	"#اعلان",
	"إعلان مدفوع",
	"اعلان مدفوع",
	"فيديو ممول",
	"محتوى ممول",
	"إعلان ممول",
	"برعاية",
	"بالتعاون مع",
	"الراعي الرسمي",
	"كود خصم",
	"كود الخصم",
	"استخدم كود",

	// English
	"#ad",
	"#sponsored",
	"paid promotion",
	"paid partnership",
	"this video is sponsored",
	"sponsored by",
	"in partnership with",
	"thanks to our sponsor",
	"thanks to today's sponsor",
	"use my code",
	"use code",
	"promo code",
	"discount code",
	"affiliate link",
}
