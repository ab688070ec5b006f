package domain

// MessageStats - общая статистика по сообщениям.
type MessageStats struct {
	Messages int `json:"messages"`
	Words    int `json:"words"`
	Media    int `json:"media"`
	Links    int `json:"links"`
}

// MonthlyPoint - точка помесячной шкалы.
type MonthlyPoint struct {
	Year     int    `json:"year"`
	MonthNum int    `json:"month_num"`
	Month    string `json:"month"`
	Count    int    `json:"count"`
	// Label имеет вид "January-2024".
	Label string `json:"label"`
}

// DailyPoint - точка дневной шкалы.
type DailyPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// KeyCount - пара (ключ, количество) в упорядоченных таблицах частот.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Heatmap - таблица активности: строки - дни недели, колонки - часовые интервалы.
type Heatmap struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
	Cells   [][]int  `json:"cells"`
}

// Cell возвращает значение ячейки или 0, если такой строки/колонки нет.
func (h Heatmap) Cell(row, column string) int {
	ri, ci := -1, -1
	for i, r := range h.Rows {
		if r == row {
			ri = i
			break
		}
	}
	for i, c := range h.Columns {
		if c == column {
			ci = i
			break
		}
	}
	if ri < 0 || ci < 0 {
		return 0
	}
	return h.Cells[ri][ci]
}

// UserShare - доля сообщений автора в процентах.
type UserShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// BusyUsers - самые активные авторы и доли всех авторов.
type BusyUsers struct {
	Top    []KeyCount  `json:"top"`
	Shares []UserShare `json:"shares"`
}

// Report объединяет все представления для одного фильтра.
type Report struct {
	Filter          string         `json:"filter"`
	Stats           MessageStats   `json:"stats"`
	MonthlyTimeline []MonthlyPoint `json:"monthly_timeline"`
	DailyTimeline   []DailyPoint   `json:"daily_timeline"`
	WeekActivity    []KeyCount     `json:"week_activity"`
	MonthActivity   []KeyCount     `json:"month_activity"`
	Heatmap         Heatmap        `json:"heatmap"`
	BusyUsers       BusyUsers      `json:"busy_users"`
	CommonWords     []KeyCount     `json:"common_words"`
	Emojis          []KeyCount     `json:"emojis"`
}
