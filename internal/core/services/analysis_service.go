package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"whatsapp-chat-analyzer/internal/core/emoji"
	"whatsapp-chat-analyzer/internal/domain"
	"whatsapp-chat-analyzer/internal/ports"
)

const (
	defaultTopUsers = 5
	defaultTopWords = 20
)

// AnalysisService реализует интерфейс Analyzer.
// Записи с неразобранной датой не попадают в представления по времени,
// но учитываются в счетчиках сообщений, слов, авторов и эмодзи.
type AnalysisService struct {
	mediaPlaceholder string
	topUsers         int
	topWords         int
}

// Option определяет функциональную опцию для конфигурации сервиса.
type Option func(*AnalysisService)

// WithMediaPlaceholder задает текст-заглушку для вложений.
func WithMediaPlaceholder(placeholder string) Option {
	return func(s *AnalysisService) {
		if placeholder != "" {
			s.mediaPlaceholder = placeholder
		}
	}
}

// WithTopUsers задает размер списка самых активных авторов.
func WithTopUsers(n int) Option {
	return func(s *AnalysisService) {
		if n > 0 {
			s.topUsers = n
		}
	}
}

// WithTopWords задает размер списка самых частых слов.
func WithTopWords(n int) Option {
	return func(s *AnalysisService) {
		if n > 0 {
			s.topWords = n
		}
	}
}

// NewAnalysisService создает новый экземпляр AnalysisService.
func NewAnalysisService(opts ...Option) ports.Analyzer {
	s := &AnalysisService{
		mediaPlaceholder: domain.DefaultMediaPlaceholder,
		topUsers:         defaultTopUsers,
		topWords:         defaultTopWords,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// filterRecords оставляет записи указанного автора. Исходный срез не изменяется.
func filterRecords(records []domain.MessageRecord, filter string) []domain.MessageRecord {
	if filter == "" || filter == domain.OverallFilter {
		return records
	}
	filtered := make([]domain.MessageRecord, 0)
	for _, rec := range records {
		if rec.Author == filter {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// MessageStats считает сообщения, слова, вложения и ссылки.
func (s *AnalysisService) MessageStats(records []domain.MessageRecord, filter string) domain.MessageStats {
	var stats domain.MessageStats
	for _, rec := range filterRecords(records, filter) {
		stats.Messages++
		stats.Words += len(strings.Fields(rec.Message))
		if rec.Message == s.mediaPlaceholder {
			stats.Media++
		}
		if strings.Contains(rec.Message, "http") {
			stats.Links++
		}
	}
	return stats
}

// MonthlyTimeline группирует сообщения по (год, месяц) в хронологическом порядке.
func (s *AnalysisService) MonthlyTimeline(records []domain.MessageRecord, filter string) []domain.MonthlyPoint {
	type monthKey struct{ year, month int }
	counts := make(map[monthKey]int)
	for _, rec := range filterRecords(records, filter) {
		if !rec.Resolved() {
			continue
		}
		counts[monthKey{rec.Year, rec.MonthNum}]++
	}

	timeline := make([]domain.MonthlyPoint, 0, len(counts))
	for k, count := range counts {
		name := time.Month(k.month).String()
		timeline = append(timeline, domain.MonthlyPoint{
			Year:     k.year,
			MonthNum: k.month,
			Month:    name,
			Count:    count,
			Label:    name + "-" + strconv.Itoa(k.year),
		})
	}
	sort.Slice(timeline, func(i, j int) bool {
		if timeline[i].Year != timeline[j].Year {
			return timeline[i].Year < timeline[j].Year
		}
		return timeline[i].MonthNum < timeline[j].MonthNum
	})
	return timeline
}

// DailyTimeline группирует сообщения по календарным дням.
func (s *AnalysisService) DailyTimeline(records []domain.MessageRecord, filter string) []domain.DailyPoint {
	counts := make(map[string]int)
	for _, rec := range filterRecords(records, filter) {
		if rec.Resolved() {
			counts[rec.Date]++
		}
	}

	timeline := make([]domain.DailyPoint, 0, len(counts))
	for date, count := range counts {
		timeline = append(timeline, domain.DailyPoint{Date: date, Count: count})
	}
	// Даты в формате ISO сортируются лексикографически.
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Date < timeline[j].Date })
	return timeline
}

// WeekActivityMap считает сообщения по дням недели, по убыванию.
func (s *AnalysisService) WeekActivityMap(records []domain.MessageRecord, filter string) []domain.KeyCount {
	c := newCounter()
	for _, rec := range filterRecords(records, filter) {
		if rec.Resolved() {
			c.add(rec.DayName)
		}
	}
	return c.sortedBy(weekdayRank)
}

// MonthActivityMap считает сообщения по месяцам, по убыванию.
func (s *AnalysisService) MonthActivityMap(records []domain.MessageRecord, filter string) []domain.KeyCount {
	c := newCounter()
	for _, rec := range filterRecords(records, filter) {
		if rec.Resolved() {
			c.add(rec.Month)
		}
	}
	return c.sortedBy(monthRank)
}

// ActivityHeatmap строит таблицу "день недели x часовой интервал".
// Отсутствующие сочетания равны 0.
func (s *AnalysisService) ActivityHeatmap(records []domain.MessageRecord, filter string) domain.Heatmap {
	type cell struct {
		day  time.Weekday
		hour int
	}
	counts := make(map[cell]int)
	days := make(map[time.Weekday]bool)
	hours := make(map[int]bool)
	for _, rec := range filterRecords(records, filter) {
		if !rec.Resolved() {
			continue
		}
		wd := rec.Timestamp.Weekday()
		counts[cell{wd, rec.Hour}]++
		days[wd] = true
		hours[rec.Hour] = true
	}

	heatmap := domain.Heatmap{Rows: []string{}, Columns: []string{}, Cells: [][]int{}}
	var rowDays []time.Weekday
	for _, wd := range weekOrder {
		if days[wd] {
			rowDays = append(rowDays, wd)
			heatmap.Rows = append(heatmap.Rows, wd.String())
		}
	}
	var colHours []int
	for h := 0; h < 24; h++ {
		if hours[h] {
			colHours = append(colHours, h)
			heatmap.Columns = append(heatmap.Columns, domain.HourBucket(h))
		}
	}
	for _, wd := range rowDays {
		row := make([]int, len(colHours))
		for i, h := range colHours {
			row[i] = counts[cell{wd, h}]
		}
		heatmap.Cells = append(heatmap.Cells, row)
	}
	return heatmap
}

// MostBusyUsers возвращает самых активных авторов и долю каждого автора в процентах.
// Служебный автор учитывается наравне с остальными.
func (s *AnalysisService) MostBusyUsers(records []domain.MessageRecord, filter string) domain.BusyUsers {
	filtered := filterRecords(records, filter)
	c := newCounter()
	for _, rec := range filtered {
		c.add(rec.Author)
	}
	all := c.sorted()

	shares := make([]domain.UserShare, 0, len(all))
	for _, kc := range all {
		percent := float64(kc.Count) / float64(len(filtered)) * 100
		shares = append(shares, domain.UserShare{
			Name:    kc.Key,
			Percent: math.Round(percent*100) / 100,
		})
	}
	return domain.BusyUsers{Top: head(all, s.topUsers), Shares: shares}
}

// MostCommonWords возвращает самые частые слова без приведения регистра и стоп-слов.
func (s *AnalysisService) MostCommonWords(records []domain.MessageRecord, filter string) []domain.KeyCount {
	c := newCounter()
	for _, rec := range filterRecords(records, filter) {
		for _, word := range strings.Fields(rec.Message) {
			c.add(word)
		}
	}
	return head(c.sorted(), s.topWords)
}

// MostFrequentEmojis считает каждое вхождение эмодзи в тексте сообщений.
func (s *AnalysisService) MostFrequentEmojis(records []domain.MessageRecord, filter string) []domain.KeyCount {
	c := newCounter()
	for _, rec := range filterRecords(records, filter) {
		for _, e := range emoji.Extract(rec.Message) {
			c.add(e)
		}
	}
	return c.sorted()
}

// BuildReport собирает все представления для одного фильтра.
func (s *AnalysisService) BuildReport(records []domain.MessageRecord, filter string) *domain.Report {
	if filter == "" {
		filter = domain.OverallFilter
	}
	return &domain.Report{
		Filter:          filter,
		Stats:           s.MessageStats(records, filter),
		MonthlyTimeline: s.MonthlyTimeline(records, filter),
		DailyTimeline:   s.DailyTimeline(records, filter),
		WeekActivity:    s.WeekActivityMap(records, filter),
		MonthActivity:   s.MonthActivityMap(records, filter),
		Heatmap:         s.ActivityHeatmap(records, filter),
		BusyUsers:       s.MostBusyUsers(records, filter),
		CommonWords:     s.MostCommonWords(records, filter),
		Emojis:          s.MostFrequentEmojis(records, filter),
	}
}
