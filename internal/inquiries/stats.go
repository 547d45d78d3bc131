package inquiries

import (
	"sort"
	"time"
)

type DailyBucket struct {
	Day          time.Time `json:"day"`
	Date         string    `json:"date"`
	Inquiries    int       `json:"inquiries"`
	WonInquiries int       `json:"wonInquiries"`
	WonValue     float64   `json:"wonValue"`
}

type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"byStatus"`
	WonRevenue float64        `json:"wonRevenue"`
	// OpenValue sums estimated deal values of inquiries still being worked.
	OpenValue float64       `json:"openValue"`
	WinRate   float64       `json:"winRate"`
	Daily     []DailyBucket `json:"daily"`
}

// ComputeStats projects items into dashboard figures. Days are calendar days
// of createdAt in loc; won deals count toward the day they were created.
func ComputeStats(items []Inquiry, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	stats := Stats{
		Total:    len(items),
		ByStatus: make(map[Status]int, len(knownStatuses)),
		Daily:    []DailyBucket{},
	}
	for _, s := range knownStatuses {
		stats.ByStatus[s] = 0
	}

	buckets := make(map[time.Time]*DailyBucket)
	for _, inq := range items {
		stats.ByStatus[inq.Status]++

		value := 0.0
		if inq.DealValue != nil {
			value = *inq.DealValue
		}
		won := inq.Status == StatusClosedWon
		switch {
		case won:
			stats.WonRevenue += value
		case inq.Status == StatusPending || inq.Status == StatusInProgress:
			stats.OpenValue += value
		}

		if inq.CreatedAt.IsZero() {
			continue
		}
		t := inq.CreatedAt.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		b, ok := buckets[day]
		if !ok {
			b = &DailyBucket{Day: day, Date: day.Format("2006-01-02")}
			buckets[day] = b
		}
		b.Inquiries++
		if won {
			b.WonInquiries++
			b.WonValue += value
		}
	}

	closed := stats.ByStatus[StatusClosedWon] + stats.ByStatus[StatusClosedLost]
	if closed > 0 {
		stats.WinRate = float64(stats.ByStatus[StatusClosedWon]) / float64(closed)
	}

	for _, b := range buckets {
		stats.Daily = append(stats.Daily, *b)
	}
	sort.Slice(stats.Daily, func(i, j int) bool {
		return stats.Daily[i].Day.Before(stats.Daily[j].Day)
	})
	return stats
}
