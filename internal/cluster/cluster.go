// Package cluster groups contacts by embedding similarity.
package cluster

import (
	"sort"

	"connections/internal/domain"
)

// DefaultThreshold is the minimum cosine to a leader for joining its cluster.
const DefaultThreshold = 0.8

type group struct {
	leader  int
	members []int
}

// Leader runs single-pass leader clustering over vectors, visiting them in
// order. Each vector joins the first cluster whose leader has cosine >=
// threshold, otherwise it leads a new cluster. Zero vectors are never
// similar to anything and always stand alone.
//
// Clusters are returned largest first, then by leader name; members keep
// input order with the leader first.
func Leader(names []string, vectors [][]float64, threshold float64) []domain.Cluster {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	groups := make([]group, 0, len(names))
	for i := range names {
		if i >= len(vectors) || domain.IsZero(vectors[i]) {
			groups = append(groups, group{leader: i, members: []int{i}})
			continue
		}
		assigned := false
		for g := range groups {
			lead := groups[g].leader
			if domain.IsZero(vectors[lead]) {
				continue
			}
			if domain.Cosine(vectors[i], vectors[lead]) >= threshold {
				groups[g].members = append(groups[g].members, i)
				assigned = true
				break
			}
		}
		if !assigned {
			groups = append(groups, group{leader: i, members: []int{i}})
		}
	}

	out := make([]domain.Cluster, len(groups))
	for g, grp := range groups {
		members := make([]string, len(grp.members))
		for k, idx := range grp.members {
			members[k] = names[idx]
		}
		out[g] = domain.Cluster{Leader: names[grp.leader], Members: members}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Leader < out[j].Leader
	})
	return out
}

// Index maps each member name to the leader of its cluster.
func Index(clusters []domain.Cluster) map[string]string {
	out := make(map[string]string)
	for _, c := range clusters {
		for _, m := range c.Members {
			out[m] = c.Leader
		}
	}
	return out
}
