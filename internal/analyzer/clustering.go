package analyzer

import (
	"context"
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Partition assigns each vector to a cluster.
type Partition struct {
	Assignments []int
	Centroids   [][]float64
}

// Clusterer groups feature vectors. Implementations return an error wrapping
// ErrClusteringUnavailable when they cannot cluster the input.
type Clusterer interface {
	Cluster(ctx context.Context, vectors [][]float64, k int) (Partition, error)
}

// KMeansClusterer clusters with Lloyd's k-means.
type KMeansClusterer struct{}

// Cluster implements Clusterer.
func (KMeansClusterer) Cluster(ctx context.Context, vectors [][]float64, k int) (Partition, error) {
	if k < 1 || len(vectors) < k {
		return Partition{}, fmt.Errorf("%w: %d vectors for k=%d", ErrClusteringUnavailable, len(vectors), k)
	}
	if err := ctx.Err(); err != nil {
		return Partition{}, err
	}

	obs := make(clusters.Observations, len(vectors))
	for i, v := range vectors {
		obs[i] = clusters.Coordinates(v)
	}

	cc, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return Partition{}, fmt.Errorf("%w: %w", ErrClusteringUnavailable, err)
	}

	p := Partition{
		Assignments: make([]int, len(obs)),
		Centroids:   make([][]float64, len(cc)),
	}
	for i, c := range cc {
		p.Centroids[i] = append([]float64(nil), c.Center...)
	}
	for i, o := range obs {
		p.Assignments[i] = cc.Nearest(o)
	}
	return p, nil
}

// clusterCount picks k for n logs: half the logs, at least 2, at most limit.
func clusterCount(limit, n int) int {
	k := max(2, n/2)
	if limit > 0 {
		k = min(k, limit)
	}
	return k
}
