// Package metrics renders a report as Prometheus text exposition so the
// risk ranking can be scraped and graphed.
package metrics

import (
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/pkg/types"
)

// Metric family names.
const (
	nameComponentsTotal = "riskdash_components_total"
	nameByLevel         = "riskdash_components_by_level"
	nameRiskScore       = "riskdash_component_risk_score"
	nameRecovery        = "riskdash_component_recovery_months"
	nameFailures        = "riskdash_report_failures"
)

// Families converts rep into gauge metric families.
func Families(rep *report.Report) []*dto.MetricFamily {
	summary := rep.Summary()

	byLevel := gaugeFamily(nameByLevel, "Scored components per risk level.")
	for _, l := range types.Levels {
		byLevel.Metric = append(byLevel.Metric, gauge(float64(summary.ByLevel[l]), "level", string(l)))
	}

	score := gaugeFamily(nameRiskScore, "Composite supply-chain risk score per component.")
	recovery := gaugeFamily(nameRecovery, "Simulated recovery time in months per component and quantile.")
	for _, e := range rep.Entries {
		c := e.Component
		score.Metric = append(score.Metric, gauge(c.RiskScore, "component", c.Name, "level", string(c.RiskLevel)))
		recovery.Metric = append(recovery.Metric,
			gauge(e.Timeline.BestMonths, "component", c.Name, "quantile", "0.1"),
			gauge(e.Timeline.LikelyMonths, "component", c.Name, "quantile", "0.5"),
			gauge(e.Timeline.WorstMonths, "component", c.Name, "quantile", "0.9"),
		)
	}

	total := gaugeFamily(nameComponentsTotal, "Component records in the last report.")
	total.Metric = append(total.Metric, gauge(float64(rep.Total)))

	failures := gaugeFamily(nameFailures, "Components that could not be scored or simulated.")
	failures.Metric = append(failures.Metric, gauge(float64(len(rep.Failures))))

	return []*dto.MetricFamily{total, byLevel, score, recovery, failures}
}

// Write encodes rep in the Prometheus text format.
func Write(w io.Writer, rep *report.Report) error {
	enc := expfmt.NewEncoder(w, textFormat)
	for _, mf := range Families(rep) {
		// The text format rejects families without samples.
		if len(mf.Metric) == 0 {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the exposition of a freshly built report on every scrape.
func Handler(build func() *report.Report) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", string(textFormat))
		if err := Write(w, build()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

var textFormat = expfmt.NewFormat(expfmt.TypeTextPlain)

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

// gauge builds one sample; labels are name/value pairs.
func gauge(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	return m
}
