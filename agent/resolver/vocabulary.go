package resolver

// OrdinalWord maps a spoken ordinal to its 1-based position.
type OrdinalWord struct {
	Word     string
	Position string
}

// Vocabulary holds the domain-specific phrase tables. Order matters for
// Ordinals: the first word found in the utterance wins.
type Vocabulary struct {
	// Triggers classify an utterance as referring to something shown before.
	Triggers []string
	// Deictic phrases resolve straight to the last-shown entity.
	Deictic  []string
	Ordinals []OrdinalWord
}

var ordinalWords = []OrdinalWord{
	{"pehla", "1"}, {"pehle", "1"}, {"first", "1"},
	{"dusra", "2"}, {"dusre", "2"}, {"second", "2"},
	{"teesra", "3"}, {"teesre", "3"}, {"third", "3"},
	{"chautha", "4"}, {"chauthe", "4"}, {"fourth", "4"},
	{"panchwa", "5"}, {"panchwe", "5"}, {"fifth", "5"},
}

func LodgingVocabulary() Vocabulary {
	return Vocabulary{
		Triggers: []string{
			"iski", "iska", "iske",
			"is hotel", "this hotel", "this one",
			"ye wala", "yeh wala",
			"same hotel", "above", "mentioned", "previous",
			"its", "price", "its price", "check price",
		},
		Deictic: []string{
			"iski", "iska", "iske", "uski", "uska", "uske",
			"yeh wala", "ye wala", "yahan", "yaha",
			"this hotel", "this one", "is hotel", "same hotel",
			"above", "mentioned", "previous",
		},
		Ordinals: ordinalWords,
	}
}

func DealsVocabulary() Vocabulary {
	return Vocabulary{
		Triggers: []string{
			"iski", "iska", "iske",
			"is deal", "this deal", "this one",
			"ye wala", "yeh wala",
			"same club", "above", "mentioned", "previous",
			"its", "price", "its price", "check price",
			"same restaurant", "same cafe",
		},
		Deictic: []string{
			"iski", "iska", "iske", "uski", "uska", "uske",
			"yeh wala", "ye wala", "yahan", "yaha",
			"this ", "this one", "is club,", "same ",
			"above", "mentioned", "previous",
		},
		Ordinals: ordinalWords,
	}
}
