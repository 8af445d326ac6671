package extract

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the counters of a run as Prometheus gauges on a private
// registry, for node_exporter's textfile collector.
type Metrics struct {
	Registry *prometheus.Registry

	words       *prometheus.GaugeVec
	synsets     *prometheus.GaugeVec
	senses      *prometheus.GaugeVec
	duplicates  prometheus.Gauge
	unsupported prometheus.Gauge
	edges       *prometheus.GaugeVec
	reach       *prometheus.GaugeVec
	phase       *prometheus.GaugeVec
	resident    prometheus.Gauge
}

// NewMetrics registers the run gauges on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		words: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_words",
			Help: "Word lookups by outcome; resolved counts distinct vocabulary entries.",
		}, []string{"outcome"}),
		synsets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_synsets",
			Help: "Synsets by liveness.",
		}, []string{"state"}),
		senses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_senses",
			Help: "Sense memberships emitted and lemmas attempted.",
		}, []string{"outcome"}),
		duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexgraph_duplicate_listings",
			Help: "Synsets enumerated again under a later part of speech.",
		}),
		unsupported: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexgraph_unsupported_languages",
			Help: "Configured languages the ontology does not support.",
		}),
		edges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_edges",
			Help: "Relation edges by outcome.",
		}, []string{"relation", "outcome"}),
		reach: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_relation_reach",
			Help: "Related synsets visited per relation and target part of speech.",
		}, []string{"relation", "pos"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lexgraph_phase_duration_seconds",
			Help: "Wall time of each run phase.",
		}, []string{"phase"}),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lexgraph_resident_memory_bytes",
			Help: "Resident set size after the joint pass.",
		}),
	}
	m.Registry.MustRegister(m.words, m.synsets, m.senses, m.duplicates, m.unsupported,
		m.edges, m.reach, m.phase, m.resident)
	return m
}

// Observe copies a run summary into the gauges.
func (m *Metrics) Observe(s *Summary) {
	st := s.Stats
	m.words.WithLabelValues("resolved").Set(float64(st.WordsResolved))
	m.words.WithLabelValues("oov").Set(float64(st.OOV))
	m.synsets.WithLabelValues("live").Set(float64(st.SynsetsLive))
	m.synsets.WithLabelValues("dead").Set(float64(st.SynsetsDead()))
	m.senses.WithLabelValues("emitted").Set(float64(st.SensesEmitted))
	m.senses.WithLabelValues("attempted").Set(float64(st.SensesAttempted))
	m.duplicates.Set(float64(st.Duplicates))
	m.unsupported.Set(float64(len(s.Unsupported)))
	for _, p := range s.Projections {
		m.edges.WithLabelValues(p.Relation.Name, "emitted").Set(float64(len(p.Edges)))
		m.edges.WithLabelValues(p.Relation.Name, "dropped").Set(float64(p.Dropped))
		for pos, n := range p.Reach {
			m.reach.WithLabelValues(p.Relation.Name, pos).Set(float64(n))
		}
	}
	for _, ph := range s.Phases {
		m.phase.WithLabelValues(ph.Name).Set(ph.Elapsed.Seconds())
	}
	m.resident.Set(float64(s.ResidentBytes))
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
