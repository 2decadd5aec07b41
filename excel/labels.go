package excel

import "golang.org/x/text/language"

type labels struct {
	sheet   string
	headers [6]string
	total   string
}

var supported = []language.Tag{language.English, language.Turkish}

var labelSets = map[language.Tag]labels{
	language.English: {
		sheet:   "Cart",
		headers: [6]string{"Image", "Serial No", "Product Type", "Quantity", "Unit Price", "Line Total"},
		total:   "Grand Total:",
	},
	language.Turkish: {
		sheet:   "Sepet",
		headers: [6]string{"Görsel", "Seri No", "Ürün Tipi", "Adet", "Birim Fiyat ($)", "Toplam Fiyat ($)"},
		total:   "Genel Toplam:",
	},
}

var matcher = language.NewMatcher(supported)

// labelsFor picks the closest supported label set, English if none match.
func labelsFor(tag language.Tag) labels {
	_, idx, _ := matcher.Match(tag)
	return labelSets[supported[idx]]
}
