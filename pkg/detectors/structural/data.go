package structural

// actionVerbs are imperative verbs that, close to a harm target, indicate a
// request for operational harm rather than a discussion of it.
var actionVerbs = map[string]struct{}{
	"make": {}, "build": {}, "create": {}, "construct": {}, "assemble": {},
	"synthesize": {}, "produce": {}, "manufacture": {}, "brew": {},
	"hack": {}, "crack": {}, "breach": {}, "bypass": {}, "exploit": {},
	"steal": {}, "forge": {}, "counterfeit": {}, "launder": {},
	"kill": {}, "poison": {}, "attack": {}, "detonate": {},
	"write": {}, "code": {}, "develop": {},
}

// harmTargets are the objects whose co-occurrence with an action verb fires
// the heuristic.
var harmTargets = map[string]struct{}{
	"bomb": {}, "explosive": {}, "explosives": {}, "weapon": {},
	"weapons": {}, "gun": {}, "firearm": {}, "ammunition": {},
	"poison": {}, "toxin": {}, "ricin": {}, "anthrax": {}, "napalm": {},
	"malware": {}, "ransomware": {}, "virus": {}, "keylogger": {},
	"botnet": {}, "rootkit": {}, "spyware": {},
	"password": {}, "passwords": {}, "credentials": {},
	"meth": {}, "fentanyl": {}, "drugs": {},
}
