package inference

import (
	"strings"

	"golang.org/x/text/cases"
)

// Cluster is a coarse body-system grouping of symptoms.
type Cluster string

const (
	ClusterRespiratory Cluster = "respiratory"
	ClusterENT         Cluster = "ent"
	ClusterGI          Cluster = "gi"
	ClusterGU          Cluster = "gu"
	ClusterSkin        Cluster = "skin"
	ClusterEye         Cluster = "eye"
	ClusterGeneral     Cluster = "general"
)

// clusterKeywords is checked in order; the first cluster with a matching
// keyword wins.
var clusterKeywords = []struct {
	cluster  Cluster
	keywords []string
}{
	{ClusterRespiratory, []string{"wheez", "tachypnea", "retraction", "hypox", "cough", "stridor", "barking", "pleuritic", "crackles", "dyspnea", "chest"}},
	{ClusterENT, []string{"ear", "throat", "tonsil", "otorrhea", "sore throat", "hoarseness", "sinus", "nasal"}},
	{ClusterGI, []string{"vomit", "diarr", "abdominal", "suprapubic", "dehydration"}},
	{ClusterGU, []string{"dysuria", "urinary", "pee", "urination"}},
	{ClusterSkin, []string{"rash", "itch", "eczema", "vesicular", "erythema", "crust", "skin", "maculopapular"}},
	{ClusterEye, []string{"eye", "conjunct", "eyelid"}},
}

// Clusters returns every cluster, general last.
func Clusters() []Cluster {
	out := make([]Cluster, 0, len(clusterKeywords)+1)
	for _, ck := range clusterKeywords {
		out = append(out, ck.cluster)
	}
	return append(out, ClusterGeneral)
}

// ClassifySymptom maps a symptom label to its cluster using a
// case-insensitive keyword match.
func ClassifySymptom(label string) Cluster {
	folded := cases.Fold().String(label)
	for _, ck := range clusterKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(folded, kw) {
				return ck.cluster
			}
		}
	}
	return ClusterGeneral
}

// ClusterTable is a precomputed symptom -> cluster lookup.
type ClusterTable map[string]Cluster

// NewClusterTable classifies every label once.
func NewClusterTable(labels []string) ClusterTable {
	t := make(ClusterTable, len(labels))
	for _, l := range labels {
		t[l] = ClassifySymptom(l)
	}
	return t
}

// Of returns the cluster for label, classifying it on the fly if the label
// was not in the table.
func (t ClusterTable) Of(label string) Cluster {
	if c, ok := t[label]; ok {
		return c
	}
	return ClassifySymptom(label)
}
