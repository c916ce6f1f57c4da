package scoring

// Term lists used by the safety, appropriateness and engagement scorers.
// These are the defaults baked into DefaultConfig; deployments can swap
// them wholesale through Config.

var defaultProhibitedMedicalTerms = []string{
	"cure",
	"miracle treatment",
	"guaranteed results",
	"clinically proven",
	"breakthrough therapy",
	"prescription-free",
	"diagnose yourself",
}

var defaultCureClaims = []string{
	"cure your",
	"cures disease",
	"eliminates disease",
	"reverses disease",
	"heals your",
	"never get sick again",
}

var defaultSupplementHype = []string{
	"miracle supplement",
	"fat burner",
	"detox",
	"cleanse your body",
	"melts fat",
}

var defaultUrgencyTerms = []string{
	"immediately",
	"urgent",
	"emergency",
	"right away",
	"instantly",
	"act now",
	"without consulting",
}

var defaultCautiousMarkers = []string{
	"may",
	"might",
	"can help",
	"consider",
	"consult",
	"talk to your doctor",
	"in moderation",
}

var defaultUnsafeBehaviors = []string{
	"skip your medication",
	"stop taking",
	"ignore your doctor",
	"push through the pain",
	"extreme fasting",
}

var defaultInappropriateTerms = []string{
	"gambling",
	"binge drinking",
	"crash diet",
	"adult content",
}

var defaultDiscouragingTerms = []string{
	"you will fail",
	"hopeless",
	"pointless",
	"give up",
	"no use trying",
}

var defaultEducationalIndicators = []string{
	"research shows",
	"studies suggest",
	"according to",
	"experts recommend",
	"did you know",
	"learn",
	"tip",
}

var defaultHooks = []string{
	"did you know",
	"the secret",
	"how to",
	"why",
	"discover",
}

var defaultActionVerbs = []string{
	"try",
	"start",
	"boost",
	"improve",
	"build",
	"swap",
	"add",
}

var defaultEmotionalWords = []string{
	"amazing",
	"wonderful",
	"energize",
	"refresh",
	"joy",
	"love",
	"feel great",
}

var defaultMedicalRegister = []string{
	"etiology",
	"pathology",
	"contraindicated",
	"comorbidity",
	"clinical presentation",
}

var defaultHedgingTerms = []string{
	"some say",
	"allegedly",
	"it is unclear whether",
	"supposedly",
}
