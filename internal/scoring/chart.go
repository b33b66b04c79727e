package scoring

import (
	"encoding/json"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// bucketColors match the maturity palette used across the report.
var bucketColors = map[Bucket]string{
	BucketRed:    "#dc2626",
	BucketYellow: "#ca8a04",
	BucketGreen:  "#16a34a",
}

// ChartOptions renders the per-category score bar chart as raw echarts
// options for the results page to embed.
func ChartOptions(report *Report) json.RawMessage {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hindamise tulemused",
			Subtitle: "Kategooriate küpsustasemed",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Max:  100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(report.Categories))
	items := make([]opts.BarData, 0, len(report.Categories))
	for _, cat := range report.Categories {
		names = append(names, cat.Text)
		items = append(items, opts.BarData{
			Value: cat.Score,
			ItemStyle: &opts.ItemStyle{
				Color: bucketColors[cat.MaturityColor],
			},
		})
	}

	bar.SetXAxis(names).AddSeries("Skoor", items)
	// Validate copies the staged x-axis data into XAxisList; JSON()
	// alone does not trigger it outside the render path.
	bar.Validate()

	options, err := json.Marshal(bar.JSON())
	if err != nil {
		return nil
	}
	return options
}
