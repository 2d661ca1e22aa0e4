package classifier

import (
	"fmt"
	"strings"
	"unicode"
)

// The reply templates instruct the model to answer in a strict labeled-field
// format. Both label languages are accepted by the parser, so a model that
// localizes its labels still parses.
const promptTemplateEnglish = `You are analyzing YouTube content for sponsorship.
Decide whether the following text is sponsored content (a paid promotion, brand deal, or advertisement).

Respond ONLY in this exact labeled format, one field per line:
Sponsored: yes or no
Advertiser: <advertiser or brand name, or none>
Product: <promoted product or service, or none>
Keywords: <the sponsorship words or phrases you found, or none>
Country: <two-letter country code you would guess for the author, or none>

If the text is not sponsored, reply with "Not sponsored." on the first line.

Title: %s

Text:
%s`

const promptTemplateArabic = `أنت تحلل محتوى يوتيوب للكشف عن الرعاية الإعلانية.
حدد ما إذا كان النص التالي محتوى مدفوعاً (إعلان، رعاية، أو ترويج تجاري).

أجب فقط بهذا التنسيق المحدد، حقل واحد في كل سطر:
مدعوم: نعم أو لا
المعلن: <اسم المعلن أو العلامة التجارية، أو لا يوجد>
المنتج: <المنتج أو الخدمة المروج لها، أو لا يوجد>
الكلمات: <كلمات أو عبارات الرعاية التي وجدتها، أو لا يوجد>
الدولة: <رمز الدولة المكون من حرفين الذي تخمنه للكاتب، أو لا يوجد>

إذا لم يكن النص مدعوماً، أجب "غير مدعوم." في السطر الأول.

العنوان: %s

النص:
%s`

// BuildPrompt renders the classification prompt for one item, localized to
// Arabic when the source text is predominantly Arabic.
func BuildPrompt(text, title string) string {
	if title == "" {
		title = "-"
	}
	if isPredominantlyArabic(text) {
		return fmt.Sprintf(promptTemplateArabic, title, text)
	}
	return fmt.Sprintf(promptTemplateEnglish, title, text)
}

// isPredominantlyArabic reports whether more than half of the letters in s
// are Arabic script. Digits, punctuation, and whitespace do not count.
func isPredominantlyArabic(s string) bool {
	var letters, arabic int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Arabic, r) {
			arabic++
		}
	}
	return letters > 0 && arabic*2 > letters
}

// truncateForPrompt bounds the text sent to the provider. Long descriptions
// past the limit add cost without changing the verdict.
func truncateForPrompt(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:maxRunes]))
}
