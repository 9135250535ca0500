package park

import "strings"

// ActivityVocabulary maps lower-case activity names to NPS activity identifiers.
// It is read-only; copy it before handing it to code that may modify it.
var ActivityVocabulary = map[string]string{
	"arts and culture":      "5F723BAD-7359-48FC-98FA-631592256E35",
	"astronomy":             "13A57703-BB1A-41A2-94B8-53B692EB7238",
	"auto and atv":          "09DF0950-D319-4557-A57E-04CD2F63FF42",
	"biking":                "7CE6E935-F839-4FEC-A63E-052B1DEF39D2",
	"birdwatching":          "5A2C91D1-50EC-4B24-8BED-A2E11A1892DF",
	"boating":               "071BA73C-1D3C-46D4-A53C-00D5602F7F0E",
	"camping":               "A59947B7-3376-49B4-AD02-C0423E08C5F7",
	"climbing":              "B12FAAB9-713F-4B38-83E4-A273F5A43C77",
	"fishing":               "AE42B46C-E4B7-4889-A122-08FE180371AE",
	"guided tours":          "B33DC9B6-0B7D-4322-BAD7-A13A34C584A3",
	"hiking":                "BFF8C027-7C8F-480B-A5F8-CD8CE490BFBA",
	"horse trekking":        "0307955A-B65C-4CE4-A780-EB36BAAADF0B",
	"junior ranger program": "DF4A35E0-7983-4A3E-BC47-F37B872B0F25",
	"paddling":              "B204DE60-5A24-43DD-8902-BD1AB5E8B2A9",
	"scenic driving":        "0B4A5320-216D-451A-9990-626E1CD12B16",
	"skiing":                "F9B1D433-6B86-4804-AED7-B50A519A3B7C",
	"snow play":             "C11D3746-5063-4BD0-B245-7178D1AD866C",
	"stargazing":            "0C0D142F-06B5-4BE1-8B44-491B90F93DEB",
	"swimming":              "587BB2D3-EC35-41B2-B3F7-A39E2B088AEE",
	"wildlife watching":     "0B685688-3405-4E2A-ABBA-E3069492EC50",
}

// Vocabulary resolves activity names to identifiers.
type Vocabulary struct {
	byName map[string]string
	ids    map[string]struct{}
}

// NewVocabulary builds a Vocabulary from a name→id table. Names are matched case-insensitively.
func NewVocabulary(table map[string]string) *Vocabulary {
	v := &Vocabulary{
		byName: make(map[string]string, len(table)),
		ids:    make(map[string]struct{}, len(table)),
	}
	for name, id := range table {
		v.byName[strings.ToLower(strings.TrimSpace(name))] = id
		v.ids[id] = struct{}{}
	}
	return v
}

// Lookup returns the identifier for name, if known.
func (v *Vocabulary) Lookup(name string) (string, bool) {
	id, ok := v.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Known reports whether id belongs to the vocabulary.
func (v *Vocabulary) Known(id string) bool {
	_, ok := v.ids[id]
	return ok
}
