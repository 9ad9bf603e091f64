package assignment

import (
	"time"

	"github.com/qhdzhm/happy-sub000/internal/booking"
	"github.com/qhdzhm/happy-sub000/internal/location"
)

// demoPlan describes one demo booking as (contact, pax, start offset in
// days from today, tour titles per day).
type demoPlan struct {
	contact string
	phone   string
	pax     int
	offset  int
	titles  []string
}

var demoPlans = []demoPlan{
	{"张先生", "0455 123 456", 4, 0, []string{"亚瑟港含门票一日游", "布鲁尼岛一日游", "摇篮山一日游"}},
	{"李女士", "0400 987 654", 2, 0, []string{"亚瑟港迅游", "酒杯湾一日游", "惠灵顿山半日游"}},
	{"王一家", "0411 222 333", 6, 1, []string{"摇篮山一日游", "摇篮山一日游", "霍巴特市区半日游"}},
	{"Chen", "0433 444 555", 3, 2, []string{"布鲁尼岛一日游", "亚瑟港不含门票一日游"}},
	{"刘先生", "0422 666 777", 5, 3, []string{"酒杯湾一日游", "菲欣纳半日游", "亚瑟港含门票一日游", "布鲁尼岛一日游"}},
}

// NewDemo returns an in-memory service preloaded with a handful of
// bookings around the given day. It backs offline runs so the board has
// something to show before a real service is configured.
func NewDemo(today time.Time) *Memory {
	normalizer := location.NewNormalizer(location.DefaultRules())

	bookings := make([]*booking.Booking, 0, len(demoPlans))
	for i, p := range demoPlans {
		b := &booking.Booking{
			ID:           int64(1000 + i),
			ContactName:  p.contact,
			ContactPhone: p.phone,
			Pax:          p.pax,
		}
		for d, title := range p.titles {
			day := today.AddDate(0, 0, p.offset+d)
			key := normalizer.Normalize(title)
			b.SetAssignment(day, &booking.LocationAssignment{
				Name:  title,
				Key:   key,
				Color: location.ColorTag(key),
				Pax:   p.pax,
			})
		}
		bookings = append(bookings, b)
	}

	m := NewMemory()
	m.SetBookings(bookings)
	return m
}
