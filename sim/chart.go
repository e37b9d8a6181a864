package sim

import (
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/teranos/qlearn/errors"
)

// WriteRewardChart renders an HTML page with the total reward and the
// exploration rate of every episode.
func WriteRewardChart(w io.Writer, results []EpisodeResult) error {
	if len(results) == 0 {
		return errors.NewInvalidRequestError("no episodes to plot")
	}

	episodes := make([]string, len(results))
	rewards := make([]opts.LineData, len(results))
	epsilons := make([]opts.LineData, len(results))
	for i, r := range results {
		episodes[i] = strconv.Itoa(r.Episode)
		rewards[i] = opts.LineData{Value: r.TotalReward}
		epsilons[i] = opts.LineData{Value: r.Epsilon}
	}

	reward := newLine("Total reward per episode", "reward")
	reward.SetXAxis(episodes).AddSeries("total reward", rewards)

	epsilon := newLine("Exploration rate", "epsilon")
	epsilon.SetXAxis(episodes).AddSeries("epsilon", epsilons)

	page := components.NewPage()
	page.PageTitle = "qlearn training"
	page.AddCharts(reward, epsilon)
	if err := page.Render(w); err != nil {
		return errors.Wrap(err, "failed to render reward chart")
	}
	return nil
}

// SaveRewardChart writes the chart of WriteRewardChart to path.
func SaveRewardChart(path string, results []EpisodeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := WriteRewardChart(f, results); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

func newLine(title, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
	)
	return line
}
