package ai

// User-facing failure strings. Raw provider errors never reach these; they
// are logged instead. Language is chosen by script heuristic on the user's
// last message.

// ConfigErrorMessage is surfaced verbatim when the API credential is unset or
// still a placeholder.
const ConfigErrorMessage = "⚠️ لم يتم تكوين مفتاح API. الرجاء إضافة OPENROUTER_API_KEY في ملف .env\n\nللحصول على مفتاح مجاني: https://openrouter.ai/keys"

func rateLimitMessage(lang string) string {
	if lang == "ar" {
		return "⏱️ تم تجاوز الحد المسموح من الطلبات لهذا النموذج. يرجى الانتظار قليلاً ثم المحاولة مرة أخرى."
	}
	return "⏱️ Rate limit exceeded for this model. Please wait a moment and try again."
}

func serviceBusyMessage(lang string) string {
	if lang == "ar" {
		return "⏳ النموذج المختار مشغول حالياً. يرجى المحاولة بعد قليل."
	}
	return "⏳ The selected model is busy right now. Please try again shortly."
}

func unreachableMessage(lang string) string {
	if lang == "ar" {
		return "عذراً، لم نتمكن من الاتصال بالنموذج حالياً. يرجى المحاولة بعد قليل."
	}
	return "Sorry, we couldn't connect to the model right now. Please try again shortly."
}

// DetectLanguage returns "ar" or "en" by script-range heuristic.
func DetectLanguage(text string) string {
	if IsArabic(text) {
		return "ar"
	}
	return "en"
}
