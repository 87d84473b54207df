package wordlist

var defaultSuspicious = []string{
	"butter cream",
	"mono and diglycerides",
	"emulsifiers",
	"enzymes",
	"rennet",
	"whey",
	"casein",
	"l-cysteine",
	"glycerin",
	"glycerol",
	"stearic acid",
	"magnesium stearate",
	"carmine",
	"cochineal",
	"shellac",
	"confectioner's glaze",
	"high fructose corn syrup",
	"msg",
	"monosodium glutamate",
	"aspartame",
	"sucralose",
	"artificial colors",
	"red 40",
	"yellow 5",
	"blue 1",
	"sodium nitrite",
	"bha",
	"bht",
	"propylene glycol",
	"carrageenan",
}

var defaultProhibited = []string{
	"pork",
	"bacon",
	"ham",
	"lard",
	"gelatin",
	"pork gelatin",
	"beef gelatin",
	"alcohol",
	"ethanol",
	"ethyl alcohol",
	"wine",
	"beer",
	"rum",
	"bourbon",
	"vodka",
	"whiskey",
	"cooking wine",
	"rice wine",
	"mirin",
	"vanilla extract",
	"grape juice from concentrate",
	"pepsin",
	"pancreatin",
	"animal shortening",
	"animal fat",
	"tallow",
	"suet",
}

// Defaults returns a fresh copy of the built-in list for c.
func Defaults(c Category) []string {
	src := defaultSuspicious
	if c == Prohibited {
		src = defaultProhibited
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
