// Package stats summarizes return-to-origin counts into the figures and
// histogram bins that reports and plotting collaborators consume.
package stats

import "github.com/nvandessel/walkstat/internal/walk"

// Bin is one histogram bar: how many walks returned exactly Returns times.
type Bin struct {
	Returns int `json:"returns" yaml:"returns"`
	Walks   int `json:"walks" yaml:"walks"`
}

// Summary condenses one simulation batch.
type Summary struct {
	Dim               int     `json:"dim" yaml:"dim"`
	Steps             int     `json:"steps" yaml:"steps"`
	Walks             int     `json:"walks" yaml:"walks"`
	Returned          int     `json:"returned" yaml:"returned"`
	MeanReturns       float64 `json:"mean_returns" yaml:"mean_returns"`
	MaxReturns        int     `json:"max_returns" yaml:"max_returns"`
	ReturnProbability float64 `json:"return_probability" yaml:"return_probability"`
	Histogram         []Bin   `json:"histogram" yaml:"histogram"`
}

// Histogram returns one bin per integer return count from 0 through the
// largest count, including empty bins. It returns nil for no counts.
func Histogram(counts []int) []Bin {
	if len(counts) == 0 {
		return nil
	}
	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}
	bins := make([]Bin, top+1)
	for i := range bins {
		bins[i].Returns = i
	}
	for _, c := range counts {
		if c < 0 {
			continue
		}
		bins[c].Walks++
	}
	return bins
}

// Summarize derives a Summary from a simulation result.
func Summarize(res *walk.Result) Summary {
	s := Summary{
		Dim:               res.Params.Dim,
		Steps:             res.Params.Steps,
		Walks:             res.Params.Walks,
		ReturnProbability: res.ReturnProbability,
		Histogram:         Histogram(res.ReturnCounts),
	}

	total := 0
	for _, c := range res.ReturnCounts {
		total += c
		if c > 0 {
			s.Returned++
		}
		if c > s.MaxReturns {
			s.MaxReturns = c
		}
	}
	if len(res.ReturnCounts) > 0 {
		s.MeanReturns = float64(total) / float64(len(res.ReturnCounts))
	}
	return s
}
