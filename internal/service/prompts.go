package service

import (
	"strings"

	"legal-companion/internal/domain"
)

const (
	ActionSummarize        = "summarize"
	ActionLegalResearch    = domain.ActionLegalResearch
	ActionCheckDocument    = "check-document"
	ActionAnalyzeRisk      = "analyze-risk"
	ActionGenerateDocument = "generate-document"

	LanguageHindi   = "hi"
	LanguageBengali = "bd"
	languageDefault = ""
)

// Actions lista las acciones soportadas por el procesador, en orden estable.
var Actions = []string{
	ActionSummarize,
	ActionLegalResearch,
	ActionCheckDocument,
	ActionAnalyzeRisk,
	ActionGenerateDocument,
}

// PromptInput son los datos que se interpolan en la plantilla. Document se
// usa en todas las acciones salvo generate-document, que usa el resto.
type PromptInput struct {
	Language   string
	Document   string
	DocType    string
	ClauseHint string
	Details    string
}

// BuildPrompt arma la instruccion para la accion e idioma. hi y bd tienen
// variantes propias; cualquier otro idioma usa la plantilla en ingles.
func BuildPrompt(action string, in PromptInput) (string, bool) {
	variants, ok := promptTemplates[strings.ToLower(strings.TrimSpace(action))]
	if !ok {
		return "", false
	}
	tmpl, ok := variants[in.Language]
	if !ok {
		tmpl = variants[languageDefault]
	}
	// Un solo pase: el texto del usuario no se vuelve a expandir.
	r := strings.NewReplacer(
		"{{language}}", in.Language,
		"{{document}}", in.Document,
		"{{doc_type}}", in.DocType,
		"{{clause_hint}}", in.ClauseHint,
		"{{details}}", in.Details,
	)
	return r.Replace(tmpl), true
}

var promptTemplates = map[string]map[string]string{
	ActionSummarize: {
		LanguageHindi: "आप एक कानूनी दस्तावेज़ सारांशकर्ता हैं। आपको हिंदी में ही जवाब देना है। कभी भी अंग्रेजी में जवाब न दें।\n" +
			"\n" +
			"निम्नलिखित कानूनी दस्तावेज़ का सारांश हिंदी में दें:\n" +
			"एक संरचित सारांश लौटाएं जिसमें शामिल हो:\n" +
			"1) टीएल;डीआर 2-3 पंक्तियों में\n" +
			"2) 5-10 बुलेट मुख्य शर्तें (पक्ष, राशि, तिथियां, दायित्व, समाप्ति)\n" +
			"3) उल्लेखनीय जोखिम/अस्पष्टताएं\n" +
			"4) कार्य आइटम या गुम जानकारी चेकलिस्ट\n" +
			"\n" +
			"{{document}}",
		LanguageBengali: "আপনি একজন আইনি নথি সারসংক্ষেপকারী। আপনাকে অবশ্যই বাংলায় উত্তর দিতে হবে। কখনও ইংরেজিতে উত্তর দেবেন না।\n" +
			"\n" +
			"নিম্নলিখিত আইনি নথির সারসংক্ষেপ বাংলায় দিন:\n" +
			"একটি কাঠামোগত সারসংক্ষেপ ফিরিয়ে দিন যার মধ্যে রয়েছে:\n" +
			"1) টিএল;ডিআর 2-3 লাইনে\n" +
			"2) 5-10 বুলেট মূল শর্তাবলী (পক্ষ, পরিমাণ, তারিখ, বাধ্যবাধকতা, সমাপ্তি)\n" +
			"3) উল্লেখযোগ্য ঝুঁকি/অস্পষ্টতা\n" +
			"4) কর্ম আইটেম বা অনুপস্থিত তথ্য চেকলিস্ট\n" +
			"\n" +
			"{{document}}",
		languageDefault: "You are a legal document summarizer. You MUST respond in {{language}} only. Never respond in any other language.\n" +
			"\n" +
			"Summarize the following legal document in {{language}}:\n" +
			"Return a structured summary with: \n" +
			"1) TL;DR in 2-3 lines, \n" +
			"2) 5-10 bullet key terms (parties, amounts, dates, obligations, termination), \n" +
			"3) Notable risks/ambiguities, \n" +
			"4) Action items or missing info checklist.\n" +
			"\n" +
			"{{document}}",
	},
	ActionLegalResearch: {
		LanguageHindi: "आप एक कानूनी शोध सहायक हैं। आपको हिंदी में ही जवाब देना है। कभी भी अंग्रेजी में जवाब न दें।\n" +
			"\n" +
			"निम्नलिखित प्रश्न का उत्तर हिंदी में दें:\n" +
			"आपका उत्तर इस प्रकार संरचित होना चाहिए:\n" +
			"- संक्षिप्त उत्तर (2-4 पंक्तियां)\n" +
			"- विश्लेषण (सरल भाषा में)\n" +
			"- प्रासंगिक प्राधिकरण (कानून/मामले संक्षिप्त प्रासंगिकता के साथ)\n" +
			"\n" +
			"प्रश्न या संदर्भ:\n" +
			"{{document}}",
		LanguageBengali: "আপনি একজন আইনি গবেষণা সহকারী। আপনাকে অবশ্যই বাংলায় উত্তর দিতে হবে। কখনও ইংরেজিতে উত্তর দেবেন না।\n" +
			"\n" +
			"নীচের প্রশ্নের উত্তর বাংলায় দিন:\n" +
			"আপনার উত্তর নিম্নলিখিতভাবে কাঠামোগত হওয়া উচিত:\n" +
			"- সংক্ষিপ্ত উত্তর (2-4 লাইন)\n" +
			"- বিশ্লেষণ (সরল ভাষায়)\n" +
			"- প্রাসঙ্গিক কর্তৃত্ব (সংবিধি/মামলা সংক্ষিপ্ত প্রাসঙ্গিকতার সাথে)\n" +
			"\n" +
			"প্রশ্ন বা প্রসঙ্গ:\n" +
			"{{document}}",
		languageDefault: "You are a legal research assistant. You MUST respond in {{language}} only. Never respond in any other language.\n" +
			"\n" +
			"Answer the query below in {{language}}:\n" +
			"Structure your answer as: \n" +
			"- Short answer (2-4 lines)\n" +
			"- Analysis (plain language)\n" +
			"- Relevant authorities (statutes/cases with brief relevance).\n" +
			"\n" +
			"Query or context:\n" +
			"{{document}}",
	},
	ActionCheckDocument: {
		LanguageHindi: "आप एक कानूनी दस्तावेज़ समीक्षक हैं। आपको हिंदी में ही जवाब देना है। कभी भी अंग्रेजी में जवाब न दें।\n" +
			"\n" +
			"निम्नलिखित कानूनी पाठ की पूर्णता और सटीकता के लिए समीक्षा करें:\n" +
			"लौटाएं:\n" +
			"- गुम फील्ड/खंड (बुलेट सूची)\n" +
			"- असंगतताएं/अस्पष्ट शर्तें\n" +
			"- सुझाए गए सुधार: जहां लागू हो वहां बेहतर खंड पाठ प्रदान करें\n" +
			"\n" +
			"{{document}}",
		LanguageBengali: "আপনি একজন আইনি নথি পর্যালোচক। আপনাকে অবশ্যই বাংলায় উত্তর দিতে হবে। কখনও ইংরেজিতে উত্তর দেবেন না।\n" +
			"\n" +
			"নিম্নলিখিত আইনি পাঠের সম্পূর্ণতা এবং সঠিকতার জন্য পর্যালোচনা করুন:\n" +
			"ফিরিয়ে দিন:\n" +
			"- অনুপস্থিত ক্ষেত্র/ধারা (বুলেট তালিকা)\n" +
			"- অসঙ্গতি/অস্পষ্ট শর্তাবলী\n" +
			"- প্রস্তাবিত সংশোধন: যেখানে প্রযোজ্য সেখানে উন্নত ধারা পাঠ প্রদান করুন\n" +
			"\n" +
			"{{document}}",
		languageDefault: "You are a legal document reviewer. You MUST respond in {{language}} only. Never respond in any other language.\n" +
			"\n" +
			"Review the following legal text in {{language}} for completeness and correctness:\n" +
			"Return: \n" +
			"- Missing fields/clauses (bullet list)\n" +
			"- Inconsistencies/ambiguous terms\n" +
			"- Suggested fixes: provide improved clause text where applicable.\n" +
			"\n" +
			"{{document}}",
	},
	ActionAnalyzeRisk: {
		LanguageHindi: "आप एक कानूनी जोखिम विश्लेषक हैं। आपको हिंदी में ही जवाब देना है। कभी भी अंग्रेजी में जवाब न दें।\n" +
			"\n" +
			"निम्नलिखित अनुबंध का विश्लेषण हिंदी में करें। उन खंडों की पहचान करें जो जोखिम भरे या अनुचित हो सकते हैं।\n" +
			"प्रत्येक मुद्दे के लिए प्रदान करें: खंड/विषय, गंभीरता (कम/मध्यम/उच्च), यह जोखिम भरा क्यों है, \n" +
			"और एक सुझाया गया पुनर्लेखन (स्पष्ट, संतुलित भाषा)।\n" +
			"\n" +
			"{{document}}",
		LanguageBengali: "আপনি একজন আইনি ঝুঁকি বিশ্লেষক। আপনাকে অবশ্যই বাংলায় উত্তর দিতে হবে। কখনও ইংরেজিতে উত্তর দেবেন না।\n" +
			"\n" +
			"নিম্নলিখিত চুক্তির বিশ্লেষণ বাংলায় করুন। সেই ধারাগুলি চিহ্নিত করুন যা ঝুঁকিপূর্ণ বা অন্যায্য হতে পারে।\n" +
			"প্রতিটি সমস্যার জন্য প্রদান করুন: ধারা/বিষয়, গুরুত্ব (কম/মাঝারি/উচ্চ), কেন এটি ঝুঁকিপূর্ণ, \n" +
			"এবং একটি প্রস্তাবিত পুনর্লিখন (স্পষ্ট, ভারসাম্যপূর্ণ ভাষা)।\n" +
			"\n" +
			"{{document}}",
		languageDefault: "You are a legal risk analyzer. You MUST respond in {{language}} only. Never respond in any other language.\n" +
			"\n" +
			"Analyze the following contract in {{language}}. Identify clauses that may be risky or unfair.\n" +
			"For each issue, provide: Clause/Topic, Severity (Low/Medium/High), Why it's risky, \n" +
			"and a Suggested rewrite (clear, balanced language).\n" +
			"\n" +
			"{{document}}",
	},
	ActionGenerateDocument: {
		LanguageHindi: "आप एक सावधानीपूर्वक कानूनी मसौदा सहायक हैं। आपको हिंदी में ही जवाब देना है। कभी भी अंग्रेजी में जवाब न दें।\n" +
			"\n" +
			"एक पूर्ण, कानूनी रूप से उपयोग योग्य {{doc_type}} हिंदी में तैयार करें। नीचे दिए गए तथ्यों को आधिकारिक डेटा के रूप में उपयोग करें। गुम मानक शर्तों को सुरक्षित, उचित डिफ़ॉल्ट के साथ भरें। शीर्षकों और क्रमांकित खंडों के साथ स्पष्ट रूप से प्रारूपित करें। विश्लेषण या टिप्पणी न जोड़ें—केवल दस्तावेज़ पाठ लौटाएं। महत्वपूर्ण: दस्तावेज़ सामग्री में कोई स्टाम्प ड्यूटी जानकारी, मूल्य निर्धारण, या लागत विवरण शामिल न करें।\n" +
			"\n" +
			"कवर करने के लिए आवश्यक खंड (उचित रूप से अनुकूलित करें):\n" +
			"{{clause_hint}}\n" +
			"\n" +
			"जहां प्रासंगिक हो वहां शब्दशः शामिल करने के लिए तथ्य:\n" +
			"{{details}}",
		LanguageBengali: "আপনি একজন সতর্ক আইনি খসড়া সহকারী। আপনাকে অবশ্যই বাংলায় উত্তর দিতে হবে। কখনও ইংরেজিতে উত্তর দেবেন না।\n" +
			"\n" +
			"একটি সম্পূর্ণ, আইনত ব্যবহারযোগ্য {{doc_type}} বাংলায় প্রস্তুত করুন। নীচের তথ্যগুলি কর্তৃত্বপূর্ণ ডেটা হিসাবে ব্যবহার করুন। অনুপস্থিত মানক শর্তাবলী নিরাপদ, যুক্তিসঙ্গত ডিফল্ট দিয়ে পূরণ করুন। শিরোনাম এবং সংখ্যাযুক্ত ধারা দিয়ে স্পষ্টভাবে ফরম্যাট করুন। বিশ্লেষণ বা মন্তব্য যোগ করবেন না—শুধুমাত্র নথির পাঠ ফিরিয়ে দিন। গুরুত্বপূর্ণ: নথির বিষয়বস্তুতে কোনো স্ট্যাম্প ডিউটি তথ্য, মূল্য নির্ধারণ, বা খরচের বিবরণ অন্তর্ভুক্ত করবেন না।\n" +
			"\n" +
			"কভার করার জন্য প্রয়োজনীয় বিভাগ (যথাযথভাবে কাস্টমাইজ করুন):\n" +
			"{{clause_hint}}\n" +
			"\n" +
			"যেখানে প্রাসঙ্গিক সেখানে আক্ষরিকভাবে অন্তর্ভুক্ত করার জন্য তথ্য:\n" +
			"{{details}}",
		languageDefault: "You are a meticulous legal drafting assistant. You MUST respond in {{language}} only. Never respond in any other language.\n" +
			"\n" +
			"Draft a complete, legally usable {{doc_type}} in {{language}}. Use the facts below as authoritative data. Fill in missing standard terms with safe, reasonable defaults. Format clearly with headings and numbered clauses. Do not add analysis or commentary—return only the document text. IMPORTANT: Do not include any stamp duty information, pricing, or cost details in the document content.\n" +
			"\n" +
			"Required sections to cover (tailor appropriately):\n" +
			"{{clause_hint}}\n" +
			"\n" +
			"Facts to incorporate verbatim where relevant:\n" +
			"{{details}}",
	},
}
