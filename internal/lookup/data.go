package lookup

var defaultCountries = map[string]string{
	"united states":            "usa",
	"united states of america": "usa",
	"us":                       "usa",
	"united kingdom":           "uk",
	"great britain":            "uk",
	"england":                  "uk",
	"united arab emirates":     "uae",
	"emirates":                 "uae",
	"dubai":                    "uae",
	"brasil":                   "brazil",
	"deutschland":              "germany",
	"españa":                   "spain",
	"japão":                    "japan",
	"méxico":                   "mexico",
	"tailândia":                "thailand",
	"new zealand":              "new-zealand",
	"south korea":              "south-korea",
	"south africa":             "south-africa",
	"saudi arabia":             "saudi-arabia",
}

var defaultFlags = map[string]string{
	"usa":                  "🇺🇸",
	"us":                   "🇺🇸",
	"united states":        "🇺🇸",
	"united-states":        "🇺🇸",
	"uk":                   "🇬🇧",
	"united kingdom":       "🇬🇧",
	"united-kingdom":       "🇬🇧",
	"england":              "🇬🇧",
	"brazil":               "🇧🇷",
	"brasil":               "🇧🇷",
	"portugal":             "🇵🇹",
	"spain":                "🇪🇸",
	"españa":               "🇪🇸",
	"germany":              "🇩🇪",
	"france":               "🇫🇷",
	"italy":                "🇮🇹",
	"australia":            "🇦🇺",
	"canada":               "🇨🇦",
	"japan":                "🇯🇵",
	"japão":                "🇯🇵",
	"china":                "🇨🇳",
	"uae":                  "🇦🇪",
	"dubai":                "🇦🇪",
	"united arab emirates": "🇦🇪",
	"argentina":            "🇦🇷",
	"chile":                "🇨🇱",
	"uruguay":              "🇺🇾",
	"mexico":               "🇲🇽",
	"méxico":               "🇲🇽",
	"thailand":             "🇹🇭",
	"new zealand":          "🇳🇿",
}

var defaultAnimals = map[string]string{
	"dog":    "🐕",
	"cat":    "🐈",
	"bird":   "🦜",
	"rabbit": "🐇",
}
