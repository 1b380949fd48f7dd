package domain

import "strings"

// DefaultLanguage is the language of dictionary templates
const DefaultLanguage = "en"

// Language describes a target language for explanations
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// SupportedLanguages is the list of languages explanations can be rendered in
var SupportedLanguages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ"},
	{Code: "or", Name: "Oriya", NativeName: "ଓଡ଼ିଆ"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "as", Name: "Assamese", NativeName: "অসমীয়া"},
	{Code: "fr", Name: "French", NativeName: "français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
}

// LookupLanguage finds a supported language by its code, ignoring case
func LookupLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// NormalizeLanguage trims and lowercases a language code, defaulting to English
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}
	return code
}
