package tiktok

import (
	"time"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
)

// Sort direction used by the seller center UI for "highest first"
const sortDescending = 2

// ProductListBody is the JSON body of the product list call. Field order
// matters: the serialized form is signed byte for byte.
type ProductListBody struct {
	Request ProductListQuery `json:"request"`
}

type ProductListQuery struct {
	TimeDescriptor   TimeDescriptor `json:"time_descriptor"`
	CCRAvailableDate string         `json:"ccr_available_date"`
	Search           Search         `json:"search"`
	Filter           struct{}       `json:"filter"`
	ListControl      ListControl    `json:"list_control"`
}

type TimeDescriptor struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	TimezoneOffset int    `json:"timezone_offset"`
}

type Search struct {
	VocStatuses []int    `json:"voc_statuses"`
	GMVRanges   []string `json:"gmv_ranges"`
}

type ListControl struct {
	Rules      []SortRule `json:"rules"`
	Pagination Pagination `json:"pagination"`
}

type SortRule struct {
	Direction int    `json:"direction"`
	Field     string `json:"field"`
}

type Pagination struct {
	Size int `json:"size"`
	Page int `json:"page"`
}

// NewProductListBody builds the body for [start, end]. The vendor treats the
// end of the window as exclusive, so end is sent as the following day.
func NewProductListBody(start, end time.Time, timezoneOffset, pageNo, pageSize int, today time.Time) ProductListBody {
	return ProductListBody{
		Request: ProductListQuery{
			TimeDescriptor: TimeDescriptor{
				Start:          domain.FormatDate(start),
				End:            domain.FormatDate(domain.DateOnly(end).AddDate(0, 0, 1)),
				TimezoneOffset: timezoneOffset,
			},
			CCRAvailableDate: domain.FormatDate(today.UTC()),
			Search: Search{
				VocStatuses: []int{},
				GMVRanges:   []string{},
			},
			ListControl: ListControl{
				Rules:      []SortRule{{Direction: sortDescending, Field: "gmv"}},
				Pagination: Pagination{Size: pageSize, Page: pageNo},
			},
		},
	}
}
