package views

const (
	LanguageEnglish = "en_US"
	LanguageChinese = "zh_CN"
)

// Labels are the display strings a consumer renders next to the view's numbers.
type Labels struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	Points    string `json:"points"`
	Rebounds  string `json:"rebounds"`
	Assists   string `json:"assists"`
	FieldGoal string `json:"fieldGoal"`
	Three     string `json:"three"`
	FreeThrow string `json:"freeThrow"`
	Period    string `json:"period"`
	Run       string `json:"run"`
	Status    string `json:"status"`
}

var labels = map[string]Labels{
	LanguageEnglish: {
		Home:      "Home",
		Away:      "Away",
		Points:    "PTS",
		Rebounds:  "REB",
		Assists:   "AST",
		FieldGoal: "FG%",
		Three:     "3P%",
		FreeThrow: "FT%",
		Period:    "Q",
		Run:       "Run",
	},
	LanguageChinese: {
		Home:      "主队",
		Away:      "客队",
		Points:    "得分",
		Rebounds:  "篮板",
		Assists:   "助攻",
		FieldGoal: "投篮命中率",
		Three:     "三分命中率",
		FreeThrow: "罚球命中率",
		Period:    "节",
		Run:       "得分高潮",
	},
}

var statusLabels = map[string]map[string]string{
	LanguageEnglish: {"scheduled": "Scheduled", "live": "Live", "final": "Final"},
	LanguageChinese: {"scheduled": "未开始", "live": "进行中", "final": "已结束"},
}

// SupportedLanguage reports whether a view can be rendered in language.
func SupportedLanguage(language string) bool {
	_, ok := labels[language]
	return ok
}

func labelsFor(language, status string) Labels {
	l, ok := labels[language]
	if !ok {
		language = LanguageEnglish
		l = labels[language]
	}
	l.Status = statusLabels[language][status]
	return l
}
