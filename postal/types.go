package postal

// Language is an ISO 639-1 language code hint. Any code libpostal
// understands may be used; the constants cover common cases.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageItalian    Language = "it"
	LanguagePortuguese Language = "pt"
	LanguageRussian    Language = "ru"
	LanguageChinese    Language = "zh"
	LanguageJapanese   Language = "ja"
	LanguageKorean     Language = "ko"
	LanguageArabic     Language = "ar"
	LanguageHindi      Language = "hi"
	LanguageDutch      Language = "nl"
	LanguagePolish     Language = "pl"
	LanguageSwedish    Language = "sv"
	LanguageNorwegian  Language = "no"
	LanguageDanish     Language = "da"
	LanguageFinnish    Language = "fi"
	LanguageCzech      Language = "cs"
	LanguageHungarian  Language = "hu"
	LanguageRomanian   Language = "ro"
	LanguageTurkish    Language = "tr"
	LanguageGreek      Language = "el"
	LanguageHebrew     Language = "he"
	LanguageThai       Language = "th"
	LanguageVietnamese Language = "vi"
	LanguageIndonesian Language = "id"
	LanguageMalay      Language = "ms"
)

// Country is an ISO 3166-1 alpha-2 country code hint.
type Country string

const (
	CountryUS Country = "US"
	CountryCA Country = "CA"
	CountryGB Country = "GB"
	CountryDE Country = "DE"
	CountryFR Country = "FR"
	CountryES Country = "ES"
	CountryIT Country = "IT"
	CountryNL Country = "NL"
	CountryAU Country = "AU"
	CountryNZ Country = "NZ"
	CountryJP Country = "JP"
	CountryCN Country = "CN"
	CountryKR Country = "KR"
	CountryIN Country = "IN"
	CountryBR Country = "BR"
	CountryMX Country = "MX"
	CountryRU Country = "RU"
	CountryPL Country = "PL"
	CountrySE Country = "SE"
	CountryNO Country = "NO"
	CountryDK Country = "DK"
	CountryFI Country = "FI"
	CountryCH Country = "CH"
	CountryAT Country = "AT"
	CountryBE Country = "BE"
	CountryPT Country = "PT"
	CountryIE Country = "IE"
)
