package extract

// LocaleMarkers holds the site's fixed UI phrases for one locale. The site
// serves two locales and switches them per visitor, so every marker-driven
// heuristic walks an ordered list of these sets instead of hardcoding
// duplicated branches. Keep the site's primary locale first.
type LocaleMarkers struct {
	ReviewStart string   `yaml:"review_start"`       // delimiter opening each review block
	Reply       string   `yaml:"reply"`              // trailing reply affordance, not review content
	Pros        string   `yaml:"pros"`               // "Advantages:" section label
	Cons        string   `yaml:"cons"`               // "Disadvantages:" section label
	NextPage    string   `yaml:"next_page"`          // pagination "next" link text
	LoadMore    string   `yaml:"load_more"`          // incremental "show more" control text
	Metadata    []string `yaml:"metadata,omitempty"` // product-variant labels interleaved with review text
}

// DefaultMarkers returns the built-in marker sets, Ukrainian first.
func DefaultMarkers() []LocaleMarkers {
	return []LocaleMarkers{
		{
			ReviewStart: "Відгук від покупця.",
			Reply:       "Відповісти",
			Pros:        "Переваги:",
			Cons:        "Недоліки:",
			NextPage:    "Далі",
			LoadMore:    "Показати ще",
			Metadata:    []string{"Продавець:", "Серія:", "Колір:", "Вбудована пам'ять:"},
		},
		{
			ReviewStart: "Отзыв от покупателя.",
			Reply:       "Ответить",
			Pros:        "Достоинства:",
			Cons:        "Недостатки:",
			NextPage:    "Следующая",
			LoadMore:    "Показать ещё",
			Metadata:    []string{"Продавец:", "Серия:", "Цвет:", "Встроенная память:"},
		},
	}
}

// LoadMoreLabels collects the "show more" texts of every locale, in order.
func LoadMoreLabels(locales []LocaleMarkers) []string {
	labels := make([]string, 0, len(locales))
	for _, loc := range locales {
		if loc.LoadMore != "" {
			labels = append(labels, loc.LoadMore)
		}
	}
	return labels
}

// NextPageLabels collects the "next page" texts of every locale, in order.
func NextPageLabels(locales []LocaleMarkers) []string {
	labels := make([]string, 0, len(locales))
	for _, loc := range locales {
		if loc.NextPage != "" {
			labels = append(labels, loc.NextPage)
		}
	}
	return labels
}
