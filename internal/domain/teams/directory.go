package teams

import (
	"strings"
)

type directoryEntry struct {
	id         string
	tricode    string
	city       string
	name       string
	conference string
	division   string
	zhName     string
}

var directory = []directoryEntry{
	{"1610612737", "ATL", "Atlanta", "Hawks", "East", "Southeast", "老鹰"},
	{"1610612738", "BOS", "Boston", "Celtics", "East", "Atlantic", "凯尔特人"},
	{"1610612739", "CLE", "Cleveland", "Cavaliers", "East", "Central", "骑士"},
	{"1610612740", "NOP", "New Orleans", "Pelicans", "West", "Southwest", "鹈鹕"},
	{"1610612741", "CHI", "Chicago", "Bulls", "East", "Central", "公牛"},
	{"1610612742", "DAL", "Dallas", "Mavericks", "West", "Southwest", "独行侠"},
	{"1610612743", "DEN", "Denver", "Nuggets", "West", "Northwest", "掘金"},
	{"1610612744", "GSW", "Golden State", "Warriors", "West", "Pacific", "勇士"},
	{"1610612745", "HOU", "Houston", "Rockets", "West", "Southwest", "火箭"},
	{"1610612746", "LAC", "LA", "Clippers", "West", "Pacific", "快船"},
	{"1610612747", "LAL", "Los Angeles", "Lakers", "West", "Pacific", "湖人"},
	{"1610612748", "MIA", "Miami", "Heat", "East", "Southeast", "热火"},
	{"1610612749", "MIL", "Milwaukee", "Bucks", "East", "Central", "雄鹿"},
	{"1610612750", "MIN", "Minnesota", "Timberwolves", "West", "Northwest", "森林狼"},
	{"1610612751", "BKN", "Brooklyn", "Nets", "East", "Atlantic", "篮网"},
	{"1610612752", "NYK", "New York", "Knicks", "East", "Atlantic", "尼克斯"},
	{"1610612753", "ORL", "Orlando", "Magic", "East", "Southeast", "魔术"},
	{"1610612754", "IND", "Indiana", "Pacers", "East", "Central", "步行者"},
	{"1610612755", "PHI", "Philadelphia", "76ers", "East", "Atlantic", "76人"},
	{"1610612756", "PHX", "Phoenix", "Suns", "West", "Pacific", "太阳"},
	{"1610612757", "POR", "Portland", "Trail Blazers", "West", "Northwest", "开拓者"},
	{"1610612758", "SAC", "Sacramento", "Kings", "West", "Pacific", "国王"},
	{"1610612759", "SAS", "San Antonio", "Spurs", "West", "Southwest", "马刺"},
	{"1610612760", "OKC", "Oklahoma City", "Thunder", "West", "Northwest", "雷霆"},
	{"1610612761", "TOR", "Toronto", "Raptors", "East", "Atlantic", "猛龙"},
	{"1610612762", "UTA", "Utah", "Jazz", "West", "Northwest", "爵士"},
	{"1610612763", "MEM", "Memphis", "Grizzlies", "West", "Southwest", "灰熊"},
	{"1610612764", "WAS", "Washington", "Wizards", "East", "Southeast", "奇才"},
	{"1610612765", "DET", "Detroit", "Pistons", "East", "Central", "活塞"},
	{"1610612766", "CHA", "Charlotte", "Hornets", "East", "Southeast", "黄蜂"},
}

// markets lists the home market of franchises whose city field uses a short form.
var markets = map[string]string{
	"LAC": "Los Angeles",
}

var (
	byAlias   map[string]int
	byTricode map[string]int
)

func (e directoryEntry) cities() []string {
	if m, ok := markets[e.tricode]; ok && m != e.city {
		return []string{e.city, m}
	}
	return []string{e.city}
}

func init() {
	byAlias = make(map[string]int, len(directory)*5)
	byTricode = make(map[string]int, len(directory))
	cityCount := make(map[string]int)
	for _, e := range directory {
		for _, city := range e.cities() {
			cityCount[normalize(city)]++
		}
	}
	for i, e := range directory {
		byTricode[e.tricode] = i
		for _, alias := range []string{e.id, e.tricode, e.name, e.zhName} {
			byAlias[normalize(alias)] = i
		}
		for _, city := range e.cities() {
			byAlias[normalize(city+" "+e.name)] = i
			// Cities shared by two franchises are ambiguous on their own.
			if cityCount[normalize(city)] == 1 {
				byAlias[normalize(city)] = i
			}
		}
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (e directoryEntry) team() Team {
	return Team{
		ID:           e.id,
		Name:         e.name,
		FullName:     e.city + " " + e.name,
		Abbreviation: e.tricode,
		City:         e.city,
		Conference:   e.conference,
		Division:     e.division,
	}
}

// Lookup resolves a tricode, team id, nickname, full name, unique city or Chinese name to a team.
func Lookup(query string) (Team, bool) {
	idx, ok := byAlias[normalize(query)]
	if !ok {
		return Team{}, false
	}
	return directory[idx].team(), true
}

// ByTricode returns the directory team for a tricode.
func ByTricode(tricode string) (Team, bool) {
	idx, ok := byTricode[strings.ToUpper(strings.TrimSpace(tricode))]
	if !ok {
		return Team{}, false
	}
	return directory[idx].team(), true
}

// All returns every team in directory order.
func All() []Team {
	out := make([]Team, 0, len(directory))
	for _, e := range directory {
		out = append(out, e.team())
	}
	return out
}

// Enrich fills the directory-derived fields (full name, conference, division) of a team
// identified by its tricode. Unknown tricodes are returned unchanged.
func Enrich(t Team) Team {
	idx, ok := byTricode[strings.ToUpper(t.Abbreviation)]
	if !ok {
		return t
	}
	e := directory[idx]
	t.FullName = strings.TrimSpace(t.City + " " + t.Name)
	if t.FullName == "" {
		t.FullName = e.city + " " + e.name
	}
	t.Conference = e.conference
	t.Division = e.division
	return t
}

// LocalName returns the team's display name for the language ("zh_CN" or "en_US").
func LocalName(t Team, language string) string {
	if language == "zh_CN" {
		if idx, ok := byTricode[strings.ToUpper(t.Abbreviation)]; ok {
			return directory[idx].zhName
		}
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Abbreviation
}
