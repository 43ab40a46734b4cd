package game

// Archetype is a cosmetic backstory card handed to a participant at game start.
// It never affects resolution, only the flavor of generated events.
type Archetype struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Illness   string `json:"illness"`
	Hobby     string `json:"hobby"`
	Mentality string `json:"mentality"`
	Items     string `json:"items"`
	Fear      string `json:"fear"`
}

// SuperEvent is a narrative hint statically bound to one archetype.
type SuperEvent struct {
	Text      string
	Archetype string
}

var archetypes = []Archetype{
	{Name: "Surgeon", Age: 30, Illness: "Broken arm", Hobby: "Playing guitar", Mentality: "Patient", Items: "Suture kit", Fear: "Claustrophobia"},
	{Name: "Teacher", Age: 35, Illness: "Healthy", Hobby: "Drawing", Mentality: "Kind", Items: "Survival kit", Fear: "Darkness"},
	{Name: "Programmer", Age: 25, Illness: "Hypertony", Hobby: "Playing video games", Mentality: "Practical", Items: "Solar panels", Fear: "Water"},
	{Name: "Agronomist", Age: 55, Illness: "Hypertension", Hobby: "Cooking", Mentality: "Practical", Items: "Seeds of 30 kinds of vegetables", Fear: "Birds"},
	{Name: "Ex-Soldier", Age: 48, Illness: "PTSD", Hobby: "Psychology", Mentality: "Leader", Items: "Weapon and ammo", Fear: "Fire"},
	{Name: "Theater Actor", Age: 35, Illness: "Congenital blindness", Hobby: "Music", Mentality: "Charismatic", Items: "Portable speaker", Fear: "Loneliness"},
	{Name: "Mechanical Engineer", Age: 40, Illness: "Arthritis", Hobby: "Robot modeling", Mentality: "Perfectionist", Items: "Spare parts for generator repair", Fear: "Loud noises"},
	{Name: "Pharmacist", Age: 33, Illness: "Dust allergy", Hobby: "Herb collecting", Mentality: "Calm", Items: "Medical kit with medicines", Fear: "Close contact with people"},
	{Name: "Science Fiction Writer", Age: 29, Illness: "Depression", Hobby: "History of civilizations", Mentality: "Highly imaginative", Items: "Book '100 Ways to Build a New Society'", Fear: "Losing memory"},
	{Name: "Child Psychologist", Age: 38, Illness: "Back pain", Hobby: "Dancing", Mentality: "Friendly", Items: "Teddy bear and children's books", Fear: "Crying children"},
}

var superEvents = []SuperEvent{
	{Text: "Near the body, a torn guitar string was found. The word 'TIGHT' was scratched into the wall.", Archetype: "Surgeon"},
	{Text: "At the shelter entrance, a drawing was left open. A blood drop stained one corner. Tracks led to a children's library.", Archetype: "Teacher"},
	{Text: "A pool of water covered the floor. A shattered solar panel lay inside. Someone left in a hurry.", Archetype: "Programmer"},
	{Text: "In the garden, torn vegetable seed packs were scattered. A crow feather lay on the soil.", Archetype: "Agronomist"},
	{Text: "By a burned-out campfire, a military jacket button was found. Someone had fired a weapon... at no one.", Archetype: "Ex-Soldier"},
	{Text: "A portable speaker was still playing music on the theater steps. No one was around to listen.", Archetype: "Theater Actor"},
	{Text: "In the workshop, generator parts were strewn everywhere. Crumpled earplugs lay in the corner.", Archetype: "Mechanical Engineer"},
	{Text: "A medical bag was neatly left on a rock. A dusty handprint stained its surface.", Archetype: "Pharmacist"},
	{Text: "Pages from '100 Ways to Build a New Society' were torn and scattered. Some were covered in confused handwriting.", Archetype: "Science Fiction Writer"},
	{Text: "A scorched teddy bear lay in the room's corner. Tear stains were visible nearby.", Archetype: "Child Psychologist"},
}

var miniEvents = []string{
	"You hear a woman's voice whispering in the dark.",
	"You hear a man's scream in the middle of the deep night.",
	"You hear footsteps fading into silence.",
	"You hear two gunshots.",
	"You hear a hollow laugh that cuts off abruptly.",
	"You see a man's silhouette in the window across the street.",
	"You see a woman's figure in the window.",
	"You see the shadow of a hand on the wall, cast by a flashlight.",
	"You see a flashlight blinking among the dark streets.",
	"You hear a woman's scream in the middle of the deep night.",
}

// superEventsFor returns the super events bound to an archetype name.
func superEventsFor(archetype string) []SuperEvent {
	matches := []SuperEvent{}
	for _, ev := range superEvents {
		if ev.Archetype == archetype {
			matches = append(matches, ev)
		}
	}
	return matches
}
