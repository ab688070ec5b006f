package services

import (
	"sort"
	"time"
	"whatsapp-chat-analyzer/internal/domain"
)

var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// counter считает ключи, запоминая порядок их первого появления.
type counter struct {
	index map[string]int
	items []domain.KeyCount
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(key string) {
	if i, ok := c.index[key]; ok {
		c.items[i].Count++
		return
	}
	c.index[key] = len(c.items)
	c.items = append(c.items, domain.KeyCount{Key: key, Count: 1})
}

// sorted упорядочивает по убыванию количества; при равенстве - по первому появлению.
func (c *counter) sorted() []domain.KeyCount {
	out := make([]domain.KeyCount, len(c.items))
	copy(out, c.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// sortedBy упорядочивает по убыванию количества; при равенстве - по rank.
func (c *counter) sortedBy(rank func(string) int) []domain.KeyCount {
	out := c.sorted()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return rank(out[i].Key) < rank(out[j].Key)
	})
	return out
}

func weekdayRank(name string) int {
	for i, wd := range weekOrder {
		if wd.String() == name {
			return i
		}
	}
	return len(weekOrder)
}

func monthRank(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m)
		}
	}
	return 13
}

func head(items []domain.KeyCount, n int) []domain.KeyCount {
	if len(items) > n {
		return items[:n]
	}
	return items
}
