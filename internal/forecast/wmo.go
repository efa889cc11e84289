package forecast

import (
	"golang.org/x/text/language"
)

// Code is a WMO 4677 weather interpretation code as published by
// Open-Meteo.
type Code int

// WMO codes referenced by the advisor.
const (
	CodeClearSky              Code = 0
	CodeMainlyClear           Code = 1
	CodePartlyCloudy          Code = 2
	CodeOvercast              Code = 3
	CodeFog                   Code = 45
	CodeRimeFog               Code = 48
	CodeDrizzleLight          Code = 51
	CodeDrizzleModerate       Code = 53
	CodeDrizzleDense          Code = 55
	CodeFreezingDrizzle       Code = 56
	CodeFreezingDrizzleDense  Code = 57
	CodeRainSlight            Code = 61
	CodeRainModerate          Code = 63
	CodeRainHeavy             Code = 65
	CodeFreezingRainLight     Code = 66
	CodeFreezingRainHeavy     Code = 67
	CodeSnowSlight            Code = 71
	CodeSnowModerate          Code = 73
	CodeSnowHeavy             Code = 75
	CodeSnowGrains            Code = 77
	CodeShowersSlight         Code = 80
	CodeShowersModerate       Code = 81
	CodeShowersViolent        Code = 82
	CodeSnowShowersSlight     Code = 85
	CodeSnowShowersHeavy      Code = 86
	CodeThunderstorm          Code = 95
	CodeThunderstormHail      Code = 96
	CodeThunderstormHeavyHail Code = 99
)

// DefaultBannedCodes returns the condition codes that veto a ride outright:
// fog, dense or freezing drizzle/rain, heavy snow, violent showers and
// thunderstorms.
func DefaultBannedCodes() map[Code]struct{} {
	banned := make(map[Code]struct{}, 16)
	for _, c := range []Code{
		CodeFog, CodeRimeFog,
		CodeDrizzleDense, CodeFreezingDrizzle, CodeFreezingDrizzleDense,
		CodeRainHeavy, CodeFreezingRainLight, CodeFreezingRainHeavy,
		CodeSnowHeavy, CodeSnowGrains,
		CodeShowersModerate, CodeShowersViolent, CodeSnowShowersHeavy,
		CodeThunderstorm, CodeThunderstormHail, CodeThunderstormHeavyHail,
	} {
		banned[c] = struct{}{}
	}
	return banned
}

type codeInfo struct {
	emoji string
	en    string
	fr    string
}

var codeCatalog = map[Code]codeInfo{
	CodeClearSky:              {"☀️", "Clear sky", "Ciel dégagé"},
	CodeMainlyClear:           {"🌤️", "Mainly clear", "Principalement dégagé"},
	CodePartlyCloudy:          {"⛅", "Partly cloudy", "Partiellement nuageux"},
	CodeOvercast:              {"☁️", "Overcast", "Couvert"},
	CodeFog:                   {"🌫️", "Fog", "Brouillard"},
	CodeRimeFog:               {"🌫️❄️", "Depositing rime fog", "Brouillard givrant"},
	CodeDrizzleLight:          {"🌦️", "Drizzle (light)", "Bruine (légère)"},
	CodeDrizzleModerate:       {"🌦️", "Drizzle (moderate)", "Bruine (modérée)"},
	CodeDrizzleDense:          {"🌧️", "Drizzle (dense)", "Bruine (dense)"},
	CodeFreezingDrizzle:       {"🌧️❄️", "Freezing drizzle (light)", "Bruine verglaçante (légère)"},
	CodeFreezingDrizzleDense:  {"🌧️❄️", "Freezing drizzle (dense)", "Bruine verglaçante (dense)"},
	CodeRainSlight:            {"🌧️", "Rain (slight)", "Pluie (faible)"},
	CodeRainModerate:          {"🌧️", "Rain (moderate)", "Pluie (modérée)"},
	CodeRainHeavy:             {"🌧️", "Rain (heavy)", "Pluie (forte)"},
	CodeFreezingRainLight:     {"🌧️❄️", "Freezing rain (light)", "Pluie verglaçante (légère)"},
	CodeFreezingRainHeavy:     {"🌧️❄️", "Freezing rain (heavy)", "Pluie verglaçante (forte)"},
	CodeSnowSlight:            {"🌨️", "Snowfall (slight)", "Chute de neige (faible)"},
	CodeSnowModerate:          {"🌨️", "Snowfall (moderate)", "Chute de neige (modérée)"},
	CodeSnowHeavy:             {"🌨️", "Snowfall (heavy)", "Chute de neige (forte)"},
	CodeSnowGrains:            {"❄️", "Snow grains", "Grains de neige"},
	CodeShowersSlight:         {"🌦️", "Rain showers (slight)", "Averses de pluie (faibles)"},
	CodeShowersModerate:       {"🌧️", "Rain showers (moderate)", "Averses de pluie (modérées)"},
	CodeShowersViolent:        {"🌧️🌩️", "Rain showers (violent)", "Averses de pluie (violentes)"},
	CodeSnowShowersSlight:     {"🌨️", "Snow showers (slight)", "Averses de neige (faibles)"},
	CodeSnowShowersHeavy:      {"🌨️", "Snow showers (heavy)", "Averses de neige (fortes)"},
	CodeThunderstorm:          {"⛈️", "Thunderstorm (slight/moderate)", "Orage (léger/modéré)"},
	CodeThunderstormHail:      {"⛈️🌨️", "Thunderstorm with slight hail", "Orage avec grêle (faible)"},
	CodeThunderstormHeavyHail: {"⛈️🌨️", "Thunderstorm with heavy hail", "Orage avec grêle (forte)"},
}

// supportedLangs drives language matching for code descriptions. English is
// first so it is the fallback for every unsupported locale.
var supportedLangs = language.NewMatcher([]language.Tag{
	language.English,
	language.French,
})

// Emoji returns the pictogram for the code, or a question mark for codes
// outside the catalog.
func (c Code) Emoji() string {
	if info, ok := codeCatalog[c]; ok {
		return info.emoji
	}
	return "❓"
}

// Describe returns the human description of the code in the closest
// supported language for the given locale (e.g. "fr-BE", "en-US").
func (c Code) Describe(locale string) string {
	info, ok := codeCatalog[c]
	if !ok {
		return "Unknown"
	}
	tag, _ := language.MatchStrings(supportedLangs, locale)
	if base, _ := tag.Base(); base.String() == "fr" {
		return info.fr
	}
	return info.en
}
