package translation

import (
	"strings"
)

// Modified Hepburn for hiragana. Katakana is folded onto hiragana first.
var kanaRomaji = map[string]string{
	"あ": "a", "い": "i", "う": "u", "え": "e", "お": "o",
	"か": "ka", "き": "ki", "く": "ku", "け": "ke", "こ": "ko",
	"が": "ga", "ぎ": "gi", "ぐ": "gu", "げ": "ge", "ご": "go",
	"さ": "sa", "し": "shi", "す": "su", "せ": "se", "そ": "so",
	"ざ": "za", "じ": "ji", "ず": "zu", "ぜ": "ze", "ぞ": "zo",
	"た": "ta", "ち": "chi", "つ": "tsu", "て": "te", "と": "to",
	"だ": "da", "ぢ": "ji", "づ": "zu", "で": "de", "ど": "do",
	"な": "na", "に": "ni", "ぬ": "nu", "ね": "ne", "の": "no",
	"は": "ha", "ひ": "hi", "ふ": "fu", "へ": "he", "ほ": "ho",
	"ば": "ba", "び": "bi", "ぶ": "bu", "べ": "be", "ぼ": "bo",
	"ぱ": "pa", "ぴ": "pi", "ぷ": "pu", "ぺ": "pe", "ぽ": "po",
	"ま": "ma", "み": "mi", "む": "mu", "め": "me", "も": "mo",
	"や": "ya", "ゆ": "yu", "よ": "yo",
	"ら": "ra", "り": "ri", "る": "ru", "れ": "re", "ろ": "ro",
	"わ": "wa", "ゐ": "i", "ゑ": "e", "を": "o", "ん": "n",
	"ゔ": "vu",
	"ぁ": "a", "ぃ": "i", "ぅ": "u", "ぇ": "e", "ぉ": "o",
	"ゃ": "ya", "ゅ": "yu", "ょ": "yo", "ゎ": "wa",

	"きゃ": "kya", "きゅ": "kyu", "きょ": "kyo",
	"ぎゃ": "gya", "ぎゅ": "gyu", "ぎょ": "gyo",
	"しゃ": "sha", "しゅ": "shu", "しょ": "sho", "しぇ": "she",
	"じゃ": "ja", "じゅ": "ju", "じょ": "jo", "じぇ": "je",
	"ちゃ": "cha", "ちゅ": "chu", "ちょ": "cho", "ちぇ": "che",
	"ぢゃ": "ja", "ぢゅ": "ju", "ぢょ": "jo",
	"にゃ": "nya", "にゅ": "nyu", "にょ": "nyo",
	"ひゃ": "hya", "ひゅ": "hyu", "ひょ": "hyo",
	"びゃ": "bya", "びゅ": "byu", "びょ": "byo",
	"ぴゃ": "pya", "ぴゅ": "pyu", "ぴょ": "pyo",
	"みゃ": "mya", "みゅ": "myu", "みょ": "myo",
	"りゃ": "rya", "りゅ": "ryu", "りょ": "ryo",
	"ふぁ": "fa", "ふぃ": "fi", "ふぇ": "fe", "ふぉ": "fo",
	"てぃ": "ti", "でぃ": "di", "とぅ": "tu", "どぅ": "du",
	"うぃ": "wi", "うぇ": "we", "うぉ": "wo",
	"ゔぁ": "va", "ゔぃ": "vi", "ゔぇ": "ve", "ゔぉ": "vo",
}

func isKana(r rune) bool {
	return (r >= 'ぁ' && r <= 'ゖ') || (r >= 'ァ' && r <= 'ヺ') || r == 'ー'
}

// foldKatakana maps katakana onto the matching hiragana.
func foldKatakana(r rune) rune {
	if r >= 'ァ' && r <= 'ヶ' {
		return r - 0x60
	}
	return r
}

// romanize converts a run of kana to upper-case Hepburn romaji.
func romanize(kana []rune) string {
	runes := make([]rune, len(kana))
	for i, r := range kana {
		runes[i] = foldKatakana(r)
	}

	var sb strings.Builder
	geminate := false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch r {
		case 'っ':
			geminate = true
			i++
			continue
		case 'ー':
			if v := lastVowel(sb.String()); v != 0 {
				sb.WriteByte(v)
			}
			i++
			continue
		}

		syllable, n := "", 1
		if i+1 < len(runes) {
			if s, ok := kanaRomaji[string(runes[i:i+2])]; ok {
				syllable, n = s, 2
			}
		}
		if syllable == "" {
			s, ok := kanaRomaji[string(r)]
			if !ok {
				s = string(kana[i])
			}
			syllable = s
		}

		if geminate {
			switch {
			case strings.HasPrefix(syllable, "ch"):
				sb.WriteByte('t')
			case syllable != "" && !strings.ContainsRune("aeioun", rune(syllable[0])):
				sb.WriteByte(syllable[0])
			}
			geminate = false
		}
		sb.WriteString(syllable)
		i += n
	}
	return strings.ToUpper(sb.String())
}

func lastVowel(s string) byte {
	for i := len(s) - 1; i >= 0; i-- {
		if strings.IndexByte("aeiou", s[i]) >= 0 {
			return s[i]
		}
	}
	return 0
}
