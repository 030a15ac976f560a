package i18n

import "sync"

// Translator retrieves localized messages for reason codes.
// data provides optional metadata to embed in the message (for example,
// "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "nullable":
			return "null は許可されていません"
		case "mapping":
			return "値を変換できません"
		case "max_len":
			return "長すぎます"
		case "min_len":
			return "短すぎます"
		case "max":
			return "大きすぎます"
		case "min":
			return "小さすぎます"
		case "choices":
			return "許可された値ではありません"
		case "regex":
			return "形式が不正です"
		case "required":
			return "必須項目が不足しています"
		case "forbidden":
			return "指定できない項目です"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "nullable":
			return "null is not allowed"
		case "mapping":
			return "value cannot be converted"
		case "max_len":
			return "too long"
		case "min_len":
			return "too short"
		case "max":
			return "too big"
		case "min":
			return "too small"
		case "choices":
			return "not one of the allowed values"
		case "regex":
			return "does not match pattern"
		case "required":
			return "required value missing"
		case "forbidden":
			return "value is not allowed here"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
