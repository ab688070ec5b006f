package exporter

import "whatsapp-chat-analyzer/internal/domain"

func sampleReport() *domain.Report {
	return &domain.Report{
		Filter: domain.OverallFilter,
		Stats:  domain.MessageStats{Messages: 6, Words: 14, Media: 1, Links: 1},
		MonthlyTimeline: []domain.MonthlyPoint{
			{Year: 2024, MonthNum: 1, Month: "January", Count: 3, Label: "January-2024"},
			{Year: 2024, MonthNum: 2, Month: "February", Count: 2, Label: "February-2024"},
		},
		DailyTimeline: []domain.DailyPoint{
			{Date: "2024-01-01", Count: 2},
			{Date: "2024-01-02", Count: 1},
		},
		WeekActivity:  []domain.KeyCount{{Key: "Monday", Count: 2}, {Key: "Tuesday", Count: 1}},
		MonthActivity: []domain.KeyCount{{Key: "January", Count: 3}, {Key: "February", Count: 2}},
		Heatmap: domain.Heatmap{
			Rows:    []string{"Monday", "Tuesday"},
			Columns: []string{"09:00-10:00", "23:00-00:00"},
			Cells:   [][]int{{2, 0}, {0, 1}},
		},
		BusyUsers: domain.BusyUsers{
			Top: []domain.KeyCount{{Key: "Alice", Count: 3}, {Key: "Bob", Count: 2}},
			Shares: []domain.UserShare{
				{Name: "Alice", Percent: 50},
				{Name: "Bob", Percent: 33.33},
				{Name: "SYSTEM", Percent: 16.67},
			},
		},
		CommonWords: []domain.KeyCount{{Key: "morning", Count: 2}, {Key: "good", Count: 1}},
		Emojis:      []domain.KeyCount{{Key: "😀", Count: 2}, {Key: "😂", Count: 1}},
	}
}
