package ai

// SystemPrompt returns the system prompt for a turn, specialized by voice
// mode, deep-thinking mode and response language. Prompts mirror the
// production assistant persona; Arabic is the default language.
func SystemPrompt(voiceMode, deepThinking bool, lang string) string {
	if voiceMode {
		if lang == "ar" {
			return `أنت مساعد ذكي محترف ومحاور ممتاز. المستخدم يتحدث معك صوتياً.
- عند التحية، رد بتحية مختصرة واسأل كيف يمكنك المساعدة
- استخدم لغة محادثاتية بسيطة بدون تنسيق أو قوائم
- كن مختصراً ومباشراً في الإجابات الصوتية`
		}
		return `You are a professional AI assistant and excellent conversationalist. The user is speaking to you via voice.
- When greeted, reply with a brief greeting and ask how you can help
- Use simple conversational language without formatting or lists
- Be concise and direct in voice responses`
	}

	base := ""
	if lang == "ar" {
		base = `أنت مساعد ذكي متقدم ومحترف. تجيب على جميع الأسئلة بذكاء ودقة في أي مجال.
- أجب بشكل واضح ومنظم مع أمثلة عند الحاجة
- استخدم التنسيق المناسب (عناوين، قوائم، أكواد)
- كن دقيقاً ومفيداً في جميع إجاباتك`
	} else {
		base = `You are an advanced and professional AI assistant. You answer all questions intelligently and accurately in any field.
- Answer clearly and in an organized way, with examples where helpful
- Use appropriate formatting (headings, lists, code blocks)
- Be precise and useful in every answer`
	}

	if deepThinking {
		if lang == "ar" {
			return base + "\n- فكر خطوة بخطوة واشرح منطقك قبل الإجابة النهائية"
		}
		return base + "\n- Think step by step and explain your reasoning before the final answer"
	}
	return base
}

// Temperature returns the sampling temperature for a turn.
func Temperature(req *TurnRequest) float64 {
	switch {
	case req.VoiceMode:
		return 0.6
	case req.DeepThinking:
		return 0.9
	default:
		return 0.7
	}
}
