package escalation

// refusalMarkers identify an assistant turn that declined a request.
var refusalMarkers = []string{
	"i can't", "i cannot", "i won't", "i will not",
	"unable to help", "not able to help", "can't assist", "cannot assist",
	"can't help with", "cannot help with", "against my guidelines",
	"i'm not able to",
}

// intensityMarkers signal pressure applied across turns.
var intensityMarkers = []string{
	"just tell me", "stop refusing", "you have to", "you must",
	"i demand", "answer me", "right now", "immediately",
	"why won't you", "i already told you", "last time i ask",
}

// stopwords are excluded when measuring topic overlap between turns.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "you": {}, "your": {}, "i": {},
	"me": {}, "my": {}, "it": {}, "this": {}, "that": {}, "can": {},
	"do": {}, "how": {}, "what": {}, "please": {}, "about": {},
	"tell": {}, "would": {}, "could": {},
}
